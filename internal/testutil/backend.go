package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/shaban/avfaudio/session"
)

// Backend is an in-memory session.Backend that records every call and keeps
// the state a real session would report back.
type Backend struct {
	mu       sync.Mutex
	calls    []string
	errs     map[string]error
	category session.Category
	mode     session.Mode
	options  session.CategoryOptions
	active   bool
	hardware session.Hardware
	route    session.Route
	delay    time.Duration

	OtherPlaying bool
}

// NewBackend starts in soloAmbient, the category iOS gives a fresh app.
func NewBackend() *Backend {
	return &Backend{
		errs:     make(map[string]error),
		category: session.SoloAmbient,
		hardware: session.Hardware{
			SampleRate:       48000,
			IOBufferDuration: 5333 * time.Microsecond,
		},
		route: session.Route{
			Outputs: session.Ports{{Type: session.PortBuiltInSpeaker, Name: "Speaker", UID: "Speaker", Channels: 2}},
		},
	}
}

// FailOn makes every later call of method return err. A nil err clears it.
func (b *Backend) FailOn(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.errs, method)
		return
	}
	b.errs[method] = err
}

// SetDelay makes every call sleep for d, for exercising slow-call paths.
func (b *Backend) SetDelay(d time.Duration) {
	b.mu.Lock()
	b.delay = d
	b.mu.Unlock()
}

func (b *Backend) SetRoute(r session.Route) {
	b.mu.Lock()
	b.route = r
	b.mu.Unlock()
}

func (b *Backend) SetHardware(h session.Hardware) {
	b.mu.Lock()
	b.hardware = h
	b.mu.Unlock()
}

// Calls returns a copy of the call log, e.g. "SetActive(true, none)".
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *Backend) ResetCalls() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

func (b *Backend) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Current returns the configuration the backend holds.
func (b *Backend) Current() session.Configuration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return session.Configuration{Category: b.category, Mode: b.mode, Options: b.options}
}

// record logs the call and returns the injected error for method, if any.
// Callers hold b.mu.
func (b *Backend) record(method string, args ...any) error {
	call := method + "("
	for i, a := range args {
		if i > 0 {
			call += ", "
		}
		call += fmt.Sprint(a)
	}
	b.calls = append(b.calls, call+")")
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	return b.errs[method]
}

func (b *Backend) SetCategory(c session.Category) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("SetCategory", c.Name()); err != nil {
		return err
	}
	b.category, b.options = c, 0
	return nil
}

func (b *Backend) SetCategoryWithOptions(c session.Category, o session.CategoryOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("SetCategoryWithOptions", c.Name(), o); err != nil {
		return err
	}
	b.category, b.options = c, o
	return nil
}

func (b *Backend) SetCategoryModeOptions(c session.Category, m session.Mode, o session.CategoryOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("SetCategoryModeOptions", c.Name(), m.Name(), o); err != nil {
		return err
	}
	b.category, b.mode, b.options = c, m, o
	return nil
}

func (b *Backend) SetMode(m session.Mode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("SetMode", m.Name()); err != nil {
		return err
	}
	b.mode = m
	return nil
}

func (b *Backend) SetActive(active bool, o session.SetActiveOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("SetActive", active, o); err != nil {
		return err
	}
	b.active = active
	return nil
}

func (b *Backend) Category() (session.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.category, b.record("Category")
}

func (b *Backend) CategoryOptions() (session.CategoryOptions, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.options, b.record("CategoryOptions")
}

func (b *Backend) Mode() (session.Mode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode, b.record("Mode")
}

func (b *Backend) OtherAudioPlaying() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.OtherPlaying, b.record("OtherAudioPlaying")
}

func (b *Backend) SetPreferredSampleRate(hz float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("SetPreferredSampleRate", hz); err != nil {
		return err
	}
	b.hardware.PreferredSampleRate = hz
	return nil
}

func (b *Backend) SetPreferredIOBufferDuration(d time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("SetPreferredIOBufferDuration", d); err != nil {
		return err
	}
	b.hardware.PreferredIOBufferDuration = d
	return nil
}

func (b *Backend) Hardware() (session.Hardware, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hardware, b.record("Hardware")
}

func (b *Backend) CurrentRoute() (session.Route, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.route, b.record("CurrentRoute")
}

var _ session.Backend = (*Backend)(nil)

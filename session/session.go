package session

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Backend is the native surface a Session forwards to. The default backend is
// [AVAudioSession sharedInstance] on iOS and a stub returning ErrUnsupported
// elsewhere. Errors returned by a Backend should be *Error when they come from
// an NSError.
type Backend interface {
	SetCategory(c Category) error
	SetCategoryWithOptions(c Category, o CategoryOptions) error
	SetCategoryModeOptions(c Category, m Mode, o CategoryOptions) error
	SetMode(m Mode) error
	SetActive(active bool, o SetActiveOptions) error

	Category() (Category, error)
	CategoryOptions() (CategoryOptions, error)
	Mode() (Mode, error)
	OtherAudioPlaying() (bool, error)

	SetPreferredSampleRate(hz float64) error
	SetPreferredIOBufferDuration(d time.Duration) error
	Hardware() (Hardware, error)
	CurrentRoute() (Route, error)
}

// Session is a handle to the shared audio session.
type Session struct {
	mu      sync.Mutex
	backend Backend
	hook    MetricsHook
}

var (
	sharedOnce sync.Once
	shared     *Session
)

// SharedInstance returns the session bound to the OS singleton. Every call
// returns the same *Session.
func SharedInstance() *Session {
	sharedOnce.Do(func() {
		shared = &Session{backend: nativeBackend()}
	})
	return shared
}

// New is an alias for SharedInstance.
func New() *Session {
	return SharedInstance()
}

// NewWithBackend returns a session forwarding to b instead of the OS.
func NewWithBackend(b Backend) *Session {
	return &Session{backend: b}
}

// SetMetricsHook sets an optional metrics hook. Passing nil disables it.
func (s *Session) SetMetricsHook(h MetricsHook) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.hook = h
	s.mu.Unlock()
}

func (s *Session) ready() error {
	if s == nil || s.backend == nil {
		return ErrNoSession
	}
	return nil
}

// do runs one forwarded call under the session lock. A returned *Error
// without a selector is copied and stamped with op; the backend's value is
// never modified.
func (s *Session) do(op string, fn func(b Backend) error) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if s.hook != nil {
		s.hook.OnCallStart(op)
	}
	err := fn(s.backend)
	if serr, ok := err.(*Error); ok && serr != nil && serr.Op == "" {
		stamped := *serr
		stamped.Op = op
		err = &stamped
	}
	if s.hook != nil {
		s.hook.OnCallDone(op, time.Since(start), err)
	}
	return err
}

// SetCategory sets the audio session's category.
func (s *Session) SetCategory(c Category) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return s.do("setCategory:error:", func(b Backend) error {
		return b.SetCategory(c)
	})
}

// SetCategoryWithOptions sets the category together with option flags.
func (s *Session) SetCategoryWithOptions(c Category, o CategoryOptions) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return s.do("setCategory:withOptions:error:", func(b Backend) error {
		return b.SetCategoryWithOptions(c, o)
	})
}

// SetCategoryModeOptions sets category, mode and options in one call.
func (s *Session) SetCategoryModeOptions(c Category, m Mode, o CategoryOptions) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return s.do("setCategory:mode:options:error:", func(b Backend) error {
		return b.SetCategoryModeOptions(c, m, o)
	})
}

// SetMode sets the audio session's mode.
func (s *Session) SetMode(m Mode) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return s.do("setMode:error:", func(b Backend) error {
		return b.SetMode(m)
	})
}

// Activate activates the audio session.
func (s *Session) Activate() error {
	return s.ActivateWithOptions(0)
}

// Deactivate deactivates the audio session.
func (s *Session) Deactivate() error {
	return s.DeactivateWithOptions(0)
}

// ActivateWithOptions activates the session with the given options.
func (s *Session) ActivateWithOptions(o SetActiveOptions) error {
	return s.setActive(true, o)
}

// DeactivateWithOptions deactivates the session. Pass
// NotifyOthersOnDeactivation to let interrupted apps resume.
func (s *Session) DeactivateWithOptions(o SetActiveOptions) error {
	return s.setActive(false, o)
}

func (s *Session) setActive(active bool, o SetActiveOptions) error {
	op := "setActive:error:"
	if o != 0 {
		op = "setActive:withOptions:error:"
	}
	return s.do(op, func(b Backend) error {
		return b.SetActive(active, o)
	})
}

// Category returns the current category.
func (s *Session) Category() (Category, error) {
	var c Category
	err := s.do("category", func(b Backend) (err error) {
		c, err = b.Category()
		return err
	})
	return c, err
}

// CategoryOptions returns the options of the current category.
func (s *Session) CategoryOptions() (CategoryOptions, error) {
	var o CategoryOptions
	err := s.do("categoryOptions", func(b Backend) (err error) {
		o, err = b.CategoryOptions()
		return err
	})
	return o, err
}

// Mode returns the current mode.
func (s *Session) Mode() (Mode, error) {
	var m Mode
	err := s.do("mode", func(b Backend) (err error) {
		m, err = b.Mode()
		return err
	})
	return m, err
}

// OtherAudioPlaying reports whether another app is playing audio.
func (s *Session) OtherAudioPlaying() (bool, error) {
	var playing bool
	err := s.do("isOtherAudioPlaying", func(b Backend) (err error) {
		playing, err = b.OtherAudioPlaying()
		return err
	})
	return playing, err
}

// SetPreferredSampleRate asks the OS for a hardware sample rate in Hz.
func (s *Session) SetPreferredSampleRate(hz float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !(hz > 0) || math.IsInf(hz, 1) {
		return fmt.Errorf("avfaudio: preferred sample rate must be positive, got %.0f", hz)
	}
	return s.do("setPreferredSampleRate:error:", func(b Backend) error {
		return b.SetPreferredSampleRate(hz)
	})
}

// SetPreferredIOBufferDuration asks the OS for an IO buffer duration.
func (s *Session) SetPreferredIOBufferDuration(d time.Duration) error {
	if err := s.ready(); err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("avfaudio: preferred IO buffer duration must be positive, got %v", d)
	}
	return s.do("setPreferredIOBufferDuration:error:", func(b Backend) error {
		return b.SetPreferredIOBufferDuration(d)
	})
}

// Hardware returns the current and preferred hardware values.
func (s *Session) Hardware() (Hardware, error) {
	var h Hardware
	err := s.do("hardware", func(b Backend) (err error) {
		h, err = b.Hardware()
		return err
	})
	return h, err
}

// ApplyLatency sets the preferred IO buffer duration for class at the current
// hardware sample rate.
func (s *Session) ApplyLatency(class LatencyClass) error {
	h, err := s.Hardware()
	if err != nil {
		return err
	}
	return s.SetPreferredIOBufferDuration(BufferDuration(MapLatencyToBuffer(class), h.SampleRate))
}

// CurrentRoute returns the inputs and outputs of the current route.
func (s *Session) CurrentRoute() (Route, error) {
	var r Route
	err := s.do("currentRoute", func(b Backend) (err error) {
		r, err = b.CurrentRoute()
		return err
	})
	return r, err
}

// Configuration is the category, mode and options triple applied in one call.
type Configuration struct {
	Category Category        `json:"category"`
	Mode     Mode            `json:"mode"`
	Options  CategoryOptions `json:"options"`
}

// Validate checks the options and the mode against the category.
func (c Configuration) Validate() error {
	if err := Validate(c.Category, c.Options); err != nil {
		return err
	}
	return ValidateMode(c.Category, c.Mode)
}

func (c Configuration) String() string {
	return fmt.Sprintf("%s/%s/%s", c.Category.Name(), c.Mode.Name(), c.Options)
}

// Apply forwards cfg with setCategory:mode:options:error:.
func (s *Session) Apply(cfg Configuration) error {
	return s.SetCategoryModeOptions(cfg.Category, cfg.Mode, cfg.Options)
}

// Configuration reads back the current category, mode and options.
func (s *Session) Configuration() (Configuration, error) {
	var cfg Configuration
	var err error
	if cfg.Category, err = s.Category(); err != nil {
		return Configuration{}, err
	}
	if cfg.Mode, err = s.Mode(); err != nil {
		return Configuration{}, err
	}
	if cfg.Options, err = s.CategoryOptions(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

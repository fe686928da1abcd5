package avfaudio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shaban/avfaudio/internal/testutil"
	"github.com/shaban/avfaudio/session"
)

func newTestController(t *testing.T, strict bool) (*Controller, *testutil.Backend) {
	t.Helper()
	fake := testutil.NewBackend()
	logger := zerolog.Nop()
	c, err := NewController(ControllerConfig{
		Session:      session.NewWithBackend(fake),
		ErrorHandler: &recordingHandler{},
		Logger:       &logger,
		Strict:       strict,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, fake
}

func lastCall(fake *testutil.Backend) string {
	calls := fake.Calls()
	if len(calls) == 0 {
		return ""
	}
	return calls[len(calls)-1]
}

func TestNewController(t *testing.T) {
	c, _ := newTestController(t, false)

	if c.GetID() == uuid.Nil {
		t.Error("controller should have an ID")
	}
	if !c.GetDispatcher().IsRunning() {
		t.Error("dispatcher should be started by NewController")
	}
	if c.GetSerializer().GetVersion() != StateVersion {
		t.Errorf("serializer version = %q", c.GetSerializer().GetVersion())
	}
	if c.IsActive() {
		t.Error("new controller should not be active")
	}
}

func TestNewControllerValidation(t *testing.T) {
	_, err := NewController(ControllerConfig{
		Session:                session.NewWithBackend(testutil.NewBackend()),
		SlowOperationThreshold: -time.Second,
	})
	if err == nil {
		t.Error("negative SlowOperationThreshold should be rejected")
	}

	c, err := NewController(ControllerConfig{
		Session:                session.NewWithBackend(testutil.NewBackend()),
		SlowOperationThreshold: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if got := c.GetDispatcher().GetPerformanceStats().SlowThreshold; got != 50*time.Millisecond {
		t.Errorf("SlowThreshold = %v", got)
	}
}

func TestControllerApplyAndActivate(t *testing.T) {
	c, fake := newTestController(t, false)
	ctx := context.Background()

	cfg := session.Configuration{
		Category: session.PlayAndRecord,
		Mode:     session.ModeVoiceChat,
		Options:  session.DefaultToSpeaker | session.AllowBluetooth,
	}
	if err := c.Apply(ctx, cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := fake.Current(); got != cfg {
		t.Errorf("backend configuration = %v, want %v", got, cfg)
	}

	if err := c.Activate(ctx, 0); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !c.IsActive() || !fake.Active() {
		t.Error("session should be active")
	}
	if got := lastCall(fake); got != "SetActive(true, none)" {
		t.Errorf("last call = %q", got)
	}

	if err := c.Deactivate(ctx, session.NotifyOthersOnDeactivation); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if c.IsActive() || fake.Active() {
		t.Error("session should be inactive")
	}
	if got := lastCall(fake); got != "SetActive(false, notifyOthersOnDeactivation)" {
		t.Errorf("last call = %q", got)
	}
}

func TestControllerSetCategory(t *testing.T) {
	c, fake := newTestController(t, false)
	ctx := context.Background()

	if err := c.SetCategory(ctx, session.Playback, 0); err != nil {
		t.Fatal(err)
	}
	if got := lastCall(fake); got != "SetCategory(playback)" {
		t.Errorf("last call = %q", got)
	}

	if err := c.SetCategory(ctx, session.Playback, session.MixWithOthers); err != nil {
		t.Fatal(err)
	}
	if got := lastCall(fake); got != "SetCategoryWithOptions(playback, mixWithOthers)" {
		t.Errorf("last call = %q", got)
	}

	if err := c.SetMode(ctx, session.ModeMoviePlayback); err != nil {
		t.Fatal(err)
	}
	if got := lastCall(fake); got != "SetMode(moviePlayback)" {
		t.Errorf("last call = %q", got)
	}
}

func TestControllerStrict(t *testing.T) {
	ctx := context.Background()
	bad := session.Configuration{Category: session.Ambient, Options: session.DefaultToSpeaker}

	strict, fake := newTestController(t, true)
	if err := strict.Apply(ctx, bad); !errors.Is(err, session.ErrInvalidOptions) {
		t.Errorf("strict Apply = %v, want ErrInvalidOptions", err)
	}
	if err := strict.SetCategory(ctx, bad.Category, bad.Options); !errors.Is(err, session.ErrInvalidOptions) {
		t.Errorf("strict SetCategory = %v, want ErrInvalidOptions", err)
	}
	// The fake starts in soloAmbient, which has no voiceChat mode.
	if err := strict.SetMode(ctx, session.ModeVoiceChat); !errors.Is(err, session.ErrInvalidMode) {
		t.Errorf("strict SetMode = %v, want ErrInvalidMode", err)
	}
	for _, call := range fake.Calls() {
		if call != "Category()" {
			t.Errorf("strict controller forwarded %q", call)
		}
	}

	lenient, fake := newTestController(t, false)
	if err := lenient.Apply(ctx, bad); err != nil {
		t.Errorf("lenient Apply = %v", err)
	}
	if got := fake.Current(); got != bad {
		t.Errorf("lenient Apply should forward, backend has %v", got)
	}
}

func TestControllerActivateFailure(t *testing.T) {
	c, fake := newTestController(t, false)
	busy := &session.Error{Domain: "NSOSStatusErrorDomain", Code: session.ErrorCodeIsBusy}
	fake.FailOn("SetActive", busy)

	err := c.Activate(context.Background(), 0)
	if !errors.Is(err, session.ErrorCodeIsBusy) {
		t.Errorf("Activate = %v, want isBusy", err)
	}
	if c.IsActive() {
		t.Error("failed activation must not mark the controller active")
	}
}

func TestControllerLatency(t *testing.T) {
	c, fake := newTestController(t, false)
	ctx := context.Background()

	if err := c.SetPreferredLatency(ctx, session.LatencyLow); err != nil {
		t.Fatal(err)
	}
	if got := lastCall(fake); got != "SetPreferredIOBufferDuration("+session.BufferDuration(128, 48000).String()+")" {
		t.Errorf("last call = %q", got)
	}

	if err := c.SetPreferredSampleRate(ctx, 44100); err != nil {
		t.Fatal(err)
	}
	if err := c.SetPreferredSampleRate(ctx, 0); err == nil {
		t.Error("zero sample rate should be rejected")
	}
}

func TestControllerWithRestoresState(t *testing.T) {
	c, fake := newTestController(t, false)
	before := fake.Current()

	cfg := session.Configuration{Category: session.PlayAndRecord, Options: session.DefaultToSpeaker}
	err := c.With(context.Background(), cfg, func(ctx context.Context) error {
		if got := fake.Current(); got != cfg {
			t.Errorf("inside With configuration = %v, want %v", got, cfg)
		}
		if !fake.Active() {
			t.Error("session should be active inside With")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if got := fake.Current(); got != before {
		t.Errorf("configuration after With = %v, want %v", got, before)
	}
	if fake.Active() || c.IsActive() {
		t.Error("session should be inactive after With")
	}
	if got := lastCall(fake); got != "SetActive(false, notifyOthersOnDeactivation)" {
		t.Errorf("last call = %q", got)
	}
}

func TestControllerWithJoinsErrors(t *testing.T) {
	c, fake := newTestController(t, false)
	errRun := errors.New("render failed")
	errDeactivate := errors.New("deactivate failed")

	err := c.With(context.Background(), session.Configuration{Category: session.Playback}, func(context.Context) error {
		fake.FailOn("SetActive", errDeactivate)
		return errRun
	})
	if !errors.Is(err, errRun) {
		t.Errorf("With = %v, want run error", err)
	}
	if !errors.Is(err, errDeactivate) {
		t.Errorf("With = %v, want restore error", err)
	}
}

func TestControllerWithCancelledContextStillRestores(t *testing.T) {
	c, fake := newTestController(t, false)
	ctx, cancel := context.WithCancel(context.Background())

	err := c.With(ctx, session.Configuration{Category: session.Record}, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("With = %v, want Canceled", err)
	}
	if got := fake.Current().Category; got != session.SoloAmbient {
		t.Errorf("category after With = %s, want soloAmbient", got)
	}
}

func TestControllerClose(t *testing.T) {
	c, fake := newTestController(t, false)
	ctx := context.Background()

	if err := c.Activate(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fake.Active() {
		t.Error("Close should deactivate a session this controller activated")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if err := c.Activate(ctx, 0); !errors.Is(err, ErrDispatcherStopped) {
		t.Errorf("Activate after Close = %v, want ErrDispatcherStopped", err)
	}
}

func TestControllerCloseKeepActive(t *testing.T) {
	fake := testutil.NewBackend()
	logger := zerolog.Nop()
	c, err := NewController(ControllerConfig{Session: session.NewWithBackend(fake), Logger: &logger, KeepActive: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Activate(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !fake.Active() {
		t.Error("KeepActive controller must leave the session active")
	}
}

func TestControllerCloseReportsDeactivateFailure(t *testing.T) {
	fake := testutil.NewBackend()
	h := &recordingHandler{}
	logger := zerolog.Nop()
	c, err := NewController(ControllerConfig{Session: session.NewWithBackend(fake), ErrorHandler: h, Logger: &logger})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Activate(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	fake.FailOn("SetActive", errors.New("still playing"))
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(h.Errors()) != 1 {
		t.Errorf("handler got %v, want one deactivate error", h.Errors())
	}
}

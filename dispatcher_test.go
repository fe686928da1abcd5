package avfaudio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shaban/avfaudio/internal/testutil"
	"github.com/shaban/avfaudio/session"
)

type recordingHandler struct {
	mu   sync.Mutex
	errs []error
}

func (h *recordingHandler) HandleError(err error) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func (h *recordingHandler) Errors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *recordingHandler) {
	t.Helper()
	h := &recordingHandler{}
	d := NewDispatcher(session.NewWithBackend(testutil.NewBackend()), h, zerolog.Nop())
	return d, h
}

// TestDispatcherLifecycle tests dispatcher start/stop behavior
func TestDispatcherLifecycle(t *testing.T) {
	d, _ := newTestDispatcher(t)

	if d.IsRunning() {
		t.Error("Dispatcher should not be running initially")
	}
	if err := d.Submit(context.Background(), OpApply, func(*session.Session) error { return nil }); !errors.Is(err, ErrDispatcherStopped) {
		t.Errorf("Submit before Start = %v, want ErrDispatcherStopped", err)
	}

	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.IsRunning() {
		t.Error("Dispatcher should be running after Start")
	}
	if err := d.Start(); err == nil {
		t.Error("Second Start should fail")
	}

	if err := d.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := d.Stop(); err != nil {
		t.Errorf("Stop should be idempotent, got %v", err)
	}
	if d.IsRunning() {
		t.Error("Dispatcher should not be running after Stop")
	}

	// Restart
	if err := d.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer d.Stop()
	if err := d.Submit(context.Background(), OpApply, func(*session.Session) error { return nil }); err != nil {
		t.Errorf("Submit after restart: %v", err)
	}
}

func TestDispatcherRunsInOrder(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	var got []int
	for i := 0; i < 20; i++ {
		i := i
		err := d.Submit(context.Background(), OpSetCategory, func(*session.Session) error {
			got = append(got, i)
			return nil
		})
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("operation %d ran as %d", i, v)
		}
	}
	if stats := d.GetPerformanceStats(); stats.Completed != 20 {
		t.Errorf("Completed = %d, want 20", stats.Completed)
	}
}

func TestDispatcherSerializesConcurrentSubmits(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	var inFlight, maxInFlight int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Submit(context.Background(), OpActivate, func(*session.Session) error {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				mu.Unlock()
				time.Sleep(100 * time.Microsecond)
				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if maxInFlight != 1 {
		t.Errorf("max concurrent operations = %d, want 1", maxInFlight)
	}
}

func TestDispatcherReturnsOperationError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	boom := errors.New("boom")
	err := d.Submit(context.Background(), OpApply, func(*session.Session) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Submit = %v, want %v", err, boom)
	}
}

func TestDispatcherContextCancel(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	release := make(chan struct{})
	blocked := make(chan struct{})
	go func() {
		_ = d.Submit(context.Background(), OpActivate, func(*session.Session) error {
			close(blocked)
			<-release
			return nil
		})
	}()
	<-blocked

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := make(chan struct{})
	err := d.Submit(ctx, OpDeactivate, func(*session.Session) error {
		close(ran)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit = %v, want DeadlineExceeded", err)
	}

	// The queued operation still runs once the dispatcher is free.
	close(release)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Error("queued operation never ran")
	}
}

func TestDispatcherStopDropsQueuedOperations(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	release := make(chan struct{})
	blocked := make(chan struct{})
	go func() {
		_ = d.Submit(context.Background(), OpActivate, func(*session.Session) error {
			close(blocked)
			<-release
			return nil
		})
	}()
	<-blocked

	var ran atomic.Bool
	queued := make(chan error, 1)
	go func() {
		queued <- d.Submit(context.Background(), OpActivate, func(*session.Session) error {
			ran.Store(true)
			return nil
		})
	}()
	deadline := time.Now().Add(time.Second)
	for {
		d.mu.RLock()
		n := len(d.operations)
		d.mu.RUnlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("second operation was never queued")
		}
		time.Sleep(time.Millisecond)
	}

	stopped := make(chan struct{})
	go func() {
		_ = d.Stop()
		close(stopped)
	}()
	for d.IsRunning() {
		time.Sleep(time.Millisecond)
	}
	close(release)
	<-stopped

	if err := <-queued; !errors.Is(err, ErrDispatcherStopped) {
		t.Errorf("queued Submit = %v, want ErrDispatcherStopped", err)
	}

	// A restart must not run what the previous run dropped.
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()
	if err := d.Submit(context.Background(), OpApply, func(*session.Session) error { return nil }); err != nil {
		t.Fatalf("Submit after restart: %v", err)
	}
	if ran.Load() {
		t.Error("operation dropped by Stop ran after restart")
	}
}

func TestDispatcherReportsSlowOperations(t *testing.T) {
	d, h := newTestDispatcher(t)
	d.SetSlowThreshold(5 * time.Millisecond)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	err := d.Submit(context.Background(), OpSetLatency, func(*session.Session) error {
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = d.Submit(context.Background(), OpApply, func(*session.Session) error { return nil })

	errs := h.Errors()
	if len(errs) != 1 {
		t.Fatalf("handler got %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), string(OpSetLatency)) {
		t.Errorf("slow report %q should name the operation", errs[0])
	}
	stats := d.GetPerformanceStats()
	if stats.SlowCount != 1 || stats.SlowThreshold != 5*time.Millisecond {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDispatcherDefaultThreshold(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if got := d.GetPerformanceStats().SlowThreshold; got != DefaultSlowOperationThreshold {
		t.Errorf("SlowThreshold = %v, want %v", got, DefaultSlowOperationThreshold)
	}
}

package avfaudio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shaban/avfaudio/session"
)

// OperationType names a session operation in logs and slow-call reports.
type OperationType string

const (
	OpApply         OperationType = "apply"
	OpSetCategory   OperationType = "set_category"
	OpSetMode       OperationType = "set_mode"
	OpActivate      OperationType = "activate"
	OpDeactivate    OperationType = "deactivate"
	OpSetLatency    OperationType = "set_latency"
	OpSetSampleRate OperationType = "set_sample_rate"
	OpRestore       OperationType = "restore"
)

// DefaultSlowOperationThreshold is the duration above which an operation is
// reported to the ErrorHandler. Activation blocks while the OS renegotiates
// the route, so anything longer is worth surfacing.
const DefaultSlowOperationThreshold = 300 * time.Millisecond

// DispatcherOperation is one queued session call.
type DispatcherOperation struct {
	ID       uuid.UUID
	Type     OperationType
	Run      func(*session.Session) error
	Response chan DispatcherResult
}

// DispatcherResult represents the result of a dispatcher operation
type DispatcherResult struct {
	ID       uuid.UUID
	Error    error
	Duration time.Duration
}

// DispatcherStats is a snapshot of dispatcher timing.
type DispatcherStats struct {
	LastDuration  time.Duration
	SlowThreshold time.Duration
	Completed     uint64
	SlowCount     uint64
}

// Dispatcher runs session operations one at a time, in submission order, on
// its own goroutine. AVAudioSession calls may block for a long time, so
// callers wait on a context instead of the OS.
type Dispatcher struct {
	session *session.Session
	handler ErrorHandler
	logger  zerolog.Logger

	mu         sync.RWMutex
	isRunning  bool
	operations chan DispatcherOperation
	stopChan   chan struct{}
	done       chan struct{}

	// Performance tracking
	lastOperationDuration time.Duration
	slowThreshold         time.Duration
	completed             uint64
	slowCount             uint64
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(s *session.Session, handler ErrorHandler, logger zerolog.Logger) *Dispatcher {
	if handler == nil {
		handler = &DefaultErrorHandler{}
	}
	return &Dispatcher{
		session:       s,
		handler:       handler,
		logger:        logger,
		slowThreshold: DefaultSlowOperationThreshold,
	}
}

// SetSlowThreshold changes the slow-operation threshold. Zero disables reports.
func (d *Dispatcher) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	d.slowThreshold = threshold
	d.mu.Unlock()
}

// Start begins the dispatch loop.
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return fmt.Errorf("dispatcher is already running")
	}

	// A fresh queue per run, so nothing submitted before a Stop survives it.
	d.operations = make(chan DispatcherOperation, 100)
	d.stopChan = make(chan struct{})
	d.done = make(chan struct{})
	d.isRunning = true
	go d.dispatchLoop(d.operations, d.stopChan, d.done)

	return nil
}

// Stop halts the dispatcher after the operation in progress, if any.
// Operations still queued are dropped and their submitters get
// ErrDispatcherStopped.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	close(d.stopChan)
	done, ops := d.done, d.operations
	d.isRunning = false
	d.mu.Unlock()

	<-done
	for {
		select {
		case op := <-ops:
			op.Response <- DispatcherResult{ID: op.ID, Error: ErrDispatcherStopped}
		default:
			return nil
		}
	}
}

// IsRunning returns whether the dispatcher is active
func (d *Dispatcher) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.isRunning
}

// GetPerformanceStats returns dispatcher performance statistics
func (d *Dispatcher) GetPerformanceStats() DispatcherStats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DispatcherStats{
		LastDuration:  d.lastOperationDuration,
		SlowThreshold: d.slowThreshold,
		Completed:     d.completed,
		SlowCount:     d.slowCount,
	}
}

// Submit queues fn and waits for its result. If ctx ends first Submit
// returns ctx.Err(); an operation that was already queued still runs.
func (d *Dispatcher) Submit(ctx context.Context, typ OperationType, fn func(*session.Session) error) error {
	d.mu.RLock()
	running, stop, ops := d.isRunning, d.stopChan, d.operations
	d.mu.RUnlock()
	if !running {
		return ErrDispatcherStopped
	}

	op := DispatcherOperation{
		ID:       uuid.New(),
		Type:     typ,
		Run:      fn,
		Response: make(chan DispatcherResult, 1),
	}

	select {
	case ops <- op:
	case <-stop:
		return ErrDispatcherStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case result := <-op.Response:
		return result.Error
	case <-stop:
		select {
		case result := <-op.Response:
			return result.Error
		default:
			return ErrDispatcherStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatchLoop runs the main dispatch loop for session operations
func (d *Dispatcher) dispatchLoop(ops chan DispatcherOperation, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case op := <-ops:
			// select picks at random when both are ready; stop wins.
			select {
			case <-stop:
				op.Response <- DispatcherResult{ID: op.ID, Error: ErrDispatcherStopped}
				return
			default:
			}
			d.execute(op)
		}
	}
}

func (d *Dispatcher) execute(op DispatcherOperation) {
	start := time.Now()
	err := op.Run(d.session)
	duration := time.Since(start)

	d.mu.Lock()
	d.lastOperationDuration = duration
	d.completed++
	slow := d.slowThreshold > 0 && duration > d.slowThreshold
	if slow {
		d.slowCount++
	}
	threshold := d.slowThreshold
	d.mu.Unlock()

	if slow {
		d.handler.HandleError(fmt.Errorf("%s took %v, target is under %v", op.Type, duration, threshold))
	}

	d.logger.Debug().
		Str("op", string(op.Type)).
		Str("id", op.ID.String()).
		Dur("duration", duration).
		Err(err).
		Msg("session operation")

	op.Response <- DispatcherResult{ID: op.ID, Error: err, Duration: duration}
}

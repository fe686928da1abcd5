package avfaudio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shaban/avfaudio/session"
)

const (
	defaultRouteInterval = 250 * time.Millisecond
	maxRouteInterval     = time.Second
	minRouteInterval     = 10 * time.Millisecond
)

// RouteChange describes the difference between two polls of the current route.
type RouteChange struct {
	Previous session.Route
	Current  session.Route

	AddedInputs    session.Ports
	RemovedInputs  session.Ports
	AddedOutputs   session.Ports
	RemovedOutputs session.Ports
}

// RouteMonitor polls the current route and reports changes, such as
// headphones being plugged in or a Bluetooth device disconnecting.
type RouteMonitor struct {
	controller *Controller
	mu         sync.RWMutex
	isRunning  bool
	cancel     context.CancelFunc
	done       chan struct{}

	// Adaptive polling
	baseInterval    time.Duration
	currentInterval time.Duration
	noChangeCount   int

	last     session.Route
	onChange func(RouteChange)

	// Performance tracking
	averageCheckTime time.Duration
	maxCheckTime     time.Duration
	checkCount       int64
}

// NewRouteMonitor creates a route monitor for the controller's session.
func NewRouteMonitor(c *Controller, onChange func(RouteChange)) *RouteMonitor {
	return &RouteMonitor{
		controller:      c,
		baseInterval:    defaultRouteInterval,
		currentInterval: defaultRouteInterval,
		onChange:        onChange,
	}
}

// SetPollingInterval updates the base polling interval (minimum 10ms)
func (rm *RouteMonitor) SetPollingInterval(interval time.Duration) error {
	if interval < minRouteInterval {
		return fmt.Errorf("polling interval cannot be less than %v", minRouteInterval)
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.baseInterval = interval
	rm.currentInterval = interval
	return nil
}

// GetPollingInterval returns the current polling interval
func (rm *RouteMonitor) GetPollingInterval() time.Duration {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.currentInterval
}

// Start reads the initial route and begins polling until ctx ends or Stop
// is called.
func (rm *RouteMonitor) Start(ctx context.Context) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.isRunning {
		return fmt.Errorf("route monitor is already running")
	}

	route, err := rm.controller.session.CurrentRoute()
	if err != nil {
		return fmt.Errorf("failed to get initial route: %w", err)
	}
	rm.last = route

	ctx, rm.cancel = context.WithCancel(ctx)
	rm.done = make(chan struct{})
	rm.isRunning = true
	go rm.monitorLoop(ctx, rm.done)

	return nil
}

// Stop halts monitoring and waits for the polling goroutine to exit.
func (rm *RouteMonitor) Stop() {
	rm.mu.Lock()
	if !rm.isRunning {
		rm.mu.Unlock()
		return
	}
	rm.cancel()
	done := rm.done
	rm.mu.Unlock()
	<-done
}

// IsRunning returns whether route monitoring is active
func (rm *RouteMonitor) IsRunning() bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.isRunning
}

func (rm *RouteMonitor) monitorLoop(ctx context.Context, done chan<- struct{}) {
	defer func() {
		rm.mu.Lock()
		rm.isRunning = false
		rm.mu.Unlock()
		close(done)
	}()

	interval := rm.GetPollingInterval()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			rm.CheckRoute()
			timer.Reset(rm.GetPollingInterval())
		}
	}
}

// CheckRoute polls the route once and reports a change, if any.
func (rm *RouteMonitor) CheckRoute() {
	start := time.Now()
	route, err := rm.controller.session.CurrentRoute()
	rm.updatePerformanceStats(time.Since(start))
	if err != nil {
		rm.controller.errorHandler.HandleError(fmt.Errorf("route check failed: %w", err))
		return
	}

	rm.mu.Lock()
	change := diffRoutes(rm.last, route)
	changed := !change.empty()
	if changed {
		rm.last = route
		rm.noChangeCount = 0
		rm.currentInterval = rm.baseInterval
	} else {
		rm.adaptiveSlowdown()
	}
	onChange := rm.onChange
	rm.mu.Unlock()

	if changed && onChange != nil {
		onChange(change)
	}
}

// adaptiveSlowdown gradually increases the polling interval when nothing
// changes. Callers hold rm.mu.
func (rm *RouteMonitor) adaptiveSlowdown() {
	rm.noChangeCount++
	if rm.noChangeCount <= 10 {
		return
	}
	next := time.Duration(float64(rm.currentInterval) * 1.1)
	if next > maxRouteInterval {
		next = maxRouteInterval
	}
	rm.currentInterval = next
}

func (rm *RouteMonitor) updatePerformanceStats(elapsed time.Duration) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.checkCount++
	if rm.checkCount == 1 {
		rm.averageCheckTime = elapsed
	} else {
		rm.averageCheckTime = time.Duration(float64(rm.averageCheckTime)*0.9 + float64(elapsed)*0.1)
	}
	if elapsed > rm.maxCheckTime {
		rm.maxCheckTime = elapsed
	}
}

// GetPerformanceStats returns route polling statistics
func (rm *RouteMonitor) GetPerformanceStats() (avgTime, maxTime time.Duration, checkCount int64) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.averageCheckTime, rm.maxCheckTime, rm.checkCount
}

func diffRoutes(prev, cur session.Route) RouteChange {
	return RouteChange{
		Previous:       prev,
		Current:        cur,
		AddedInputs:    missingFrom(cur.Inputs, prev.Inputs),
		RemovedInputs:  missingFrom(prev.Inputs, cur.Inputs),
		AddedOutputs:   missingFrom(cur.Outputs, prev.Outputs),
		RemovedOutputs: missingFrom(prev.Outputs, cur.Outputs),
	}
}

// missingFrom returns the ports of a whose UID is not in b.
func missingFrom(a, b session.Ports) session.Ports {
	var out session.Ports
	for _, p := range a {
		if b.ByUID(p.UID) == nil {
			out = append(out, p)
		}
	}
	return out
}

func (c RouteChange) empty() bool {
	return len(c.AddedInputs) == 0 && len(c.RemovedInputs) == 0 &&
		len(c.AddedOutputs) == 0 && len(c.RemovedOutputs) == 0
}

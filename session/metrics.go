package session

import "time"

// MetricsHook observes every call a Session forwards to the OS. Implementers
// can log, aggregate metrics, or emit traces. Calls happen with the session
// lock held, so hooks must not call back into the Session.
type MetricsHook interface {
	OnCallStart(op string)
	OnCallDone(op string, duration time.Duration, err error)
}

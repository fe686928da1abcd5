package avfaudio

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrDispatcherStopped is returned for operations submitted to a stopped dispatcher.
	ErrDispatcherStopped = errors.New("avfaudio: dispatcher is not running")
	// ErrIncompatibleState is returned when a saved State has another version.
	ErrIncompatibleState = errors.New("avfaudio: incompatible state version")
)

// ErrorHandler defines the interface for errors the controller cannot hand
// back to a caller, such as slow operations and failures during Close.
type ErrorHandler interface {
	HandleError(error)
}

// DefaultErrorHandler logs errors. A nil Logger uses the global zerolog logger.
type DefaultErrorHandler struct {
	Logger *zerolog.Logger
}

// HandleError implements ErrorHandler interface with structured logging
func (h *DefaultErrorHandler) HandleError(err error) {
	l := h.Logger
	if l == nil {
		l = &log.Logger
	}
	l.Error().Err(err).Msg("audio session error")
}

// LoggingErrorHandler wraps another handler and logs errors
type LoggingErrorHandler struct {
	underlying ErrorHandler
	logger     func(error)
}

// NewLoggingErrorHandler creates a new logging error handler
func NewLoggingErrorHandler(underlying ErrorHandler, logger func(error)) *LoggingErrorHandler {
	return &LoggingErrorHandler{
		underlying: underlying,
		logger:     logger,
	}
}

// HandleError implements ErrorHandler interface with logging
func (h *LoggingErrorHandler) HandleError(err error) {
	if h.logger != nil {
		h.logger(err)
	}
	if h.underlying != nil {
		h.underlying.HandleError(err)
	}
}

// PanicErrorHandler panics on any error (useful for development)
type PanicErrorHandler struct{}

// HandleError implements ErrorHandler interface by panicking
func (h *PanicErrorHandler) HandleError(err error) {
	panic(fmt.Sprintf("audio session error: %v", err))
}

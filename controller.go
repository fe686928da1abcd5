package avfaudio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shaban/avfaudio/session"
)

// Controller serializes access to an audio session and remembers whether
// this process activated it.
type Controller struct {
	id uuid.UUID

	mu     sync.RWMutex
	active bool
	closed bool
	strict bool
	keep   bool

	session      *session.Session
	dispatcher   *Dispatcher
	serializer   *Serializer
	errorHandler ErrorHandler
	logger       zerolog.Logger
}

// ControllerConfig holds configuration for NewController.
type ControllerConfig struct {
	Session                *session.Session // Optional: defaults to session.SharedInstance()
	ErrorHandler           ErrorHandler     // Optional: defaults to DefaultErrorHandler
	Logger                 *zerolog.Logger  // Optional: defaults to the global zerolog logger
	SlowOperationThreshold time.Duration    // Optional: defaults to DefaultSlowOperationThreshold

	// Strict rejects category/mode/option combinations that Validate
	// reports before they reach the session.
	Strict bool

	// KeepActive leaves an activated session active on Close.
	KeepActive bool
}

// NewController creates a controller and starts its dispatcher.
func NewController(config ControllerConfig) (*Controller, error) {
	if config.SlowOperationThreshold < 0 {
		return nil, fmt.Errorf("SlowOperationThreshold cannot be negative, got %v", config.SlowOperationThreshold)
	}

	s := config.Session
	if s == nil {
		s = session.SharedInstance()
	}
	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}
	handler := config.ErrorHandler
	if handler == nil {
		handler = &DefaultErrorHandler{Logger: &logger}
	}

	c := &Controller{
		id:           uuid.New(),
		strict:       config.Strict,
		keep:         config.KeepActive,
		session:      s,
		errorHandler: handler,
	}
	c.logger = logger.With().Str("controller", c.id.String()).Logger()

	c.dispatcher = NewDispatcher(s, handler, c.logger)
	if config.SlowOperationThreshold > 0 {
		c.dispatcher.SetSlowThreshold(config.SlowOperationThreshold)
	}
	c.serializer = NewSerializer(c)

	if err := c.dispatcher.Start(); err != nil {
		return nil, fmt.Errorf("failed to start dispatcher: %w", err)
	}
	return c, nil
}

// GetID returns the controller's UUID.
func (c *Controller) GetID() uuid.UUID { return c.id }

// Session returns the session the controller drives.
func (c *Controller) Session() *session.Session { return c.session }

// GetDispatcher returns the controller's dispatcher.
func (c *Controller) GetDispatcher() *Dispatcher { return c.dispatcher }

// GetSerializer returns the controller's serializer.
func (c *Controller) GetSerializer() *Serializer { return c.serializer }

// IsActive reports whether the last activation through this controller
// succeeded and has not been undone.
func (c *Controller) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *Controller) setActive(v bool) {
	c.mu.Lock()
	c.active = v
	c.mu.Unlock()
}

// Apply sets category, mode and options in one call.
func (c *Controller) Apply(ctx context.Context, cfg session.Configuration) error {
	if c.strict {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	return c.apply(ctx, OpApply, cfg)
}

func (c *Controller) apply(ctx context.Context, typ OperationType, cfg session.Configuration) error {
	err := c.dispatcher.Submit(ctx, typ, func(s *session.Session) error {
		return s.Apply(cfg)
	})
	if err != nil {
		return err
	}
	c.logger.Info().Str("configuration", cfg.String()).Msg("applied audio session configuration")
	return nil
}

// SetCategory sets the category with options, or the bare category when
// opts is zero.
func (c *Controller) SetCategory(ctx context.Context, cat session.Category, opts session.CategoryOptions) error {
	if c.strict {
		if err := session.Validate(cat, opts); err != nil {
			return err
		}
	}
	return c.dispatcher.Submit(ctx, OpSetCategory, func(s *session.Session) error {
		if opts == 0 {
			return s.SetCategory(cat)
		}
		return s.SetCategoryWithOptions(cat, opts)
	})
}

// SetMode sets the session mode.
func (c *Controller) SetMode(ctx context.Context, m session.Mode) error {
	if c.strict {
		cat, err := c.session.Category()
		if err != nil {
			return err
		}
		if err := session.ValidateMode(cat, m); err != nil {
			return err
		}
	}
	return c.dispatcher.Submit(ctx, OpSetMode, func(s *session.Session) error {
		return s.SetMode(m)
	})
}

// Activate activates the session.
func (c *Controller) Activate(ctx context.Context, opts session.SetActiveOptions) error {
	err := c.dispatcher.Submit(ctx, OpActivate, func(s *session.Session) error {
		if err := s.ActivateWithOptions(opts); err != nil {
			return err
		}
		c.setActive(true)
		return nil
	})
	if err != nil {
		return err
	}
	c.logger.Info().Msg("audio session activated")
	return nil
}

// Deactivate deactivates the session. NotifyOthersOnDeactivation lets
// interrupted apps resume.
func (c *Controller) Deactivate(ctx context.Context, opts session.SetActiveOptions) error {
	err := c.dispatcher.Submit(ctx, OpDeactivate, func(s *session.Session) error {
		if err := s.DeactivateWithOptions(opts); err != nil {
			return err
		}
		c.setActive(false)
		return nil
	})
	if err != nil {
		return err
	}
	c.logger.Info().Stringer("options", opts).Msg("audio session deactivated")
	return nil
}

// SetPreferredLatency sets the preferred IO buffer duration for class.
func (c *Controller) SetPreferredLatency(ctx context.Context, class session.LatencyClass) error {
	return c.dispatcher.Submit(ctx, OpSetLatency, func(s *session.Session) error {
		return s.ApplyLatency(class)
	})
}

// SetPreferredSampleRate sets the preferred hardware sample rate.
func (c *Controller) SetPreferredSampleRate(ctx context.Context, hz float64) error {
	return c.dispatcher.Submit(ctx, OpSetSampleRate, func(s *session.Session) error {
		return s.SetPreferredSampleRate(hz)
	})
}

// State captures the current session state.
func (c *Controller) State() (State, error) {
	return c.serializer.GetState()
}

// Restore puts the session back into a previously captured state.
func (c *Controller) Restore(ctx context.Context, state State) error {
	return c.serializer.SetState(ctx, state)
}

// With applies cfg, activates the session, runs fn and then restores the
// state captured before cfg was applied. Restore errors are joined with
// the error from fn.
func (c *Controller) With(ctx context.Context, cfg session.Configuration, fn func(context.Context) error) error {
	prev, err := c.State()
	if err != nil {
		return err
	}
	if err := c.Apply(ctx, cfg); err != nil {
		return err
	}

	var runErr error
	if err := c.Activate(ctx, 0); err != nil {
		runErr = err
	} else {
		runErr = fn(ctx)
	}

	// Restore even when ctx is done.
	restoreCtx := context.WithoutCancel(ctx)
	if err := c.Restore(restoreCtx, prev); err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to restore session state: %w", err))
	}
	return runErr
}

// Close deactivates the session if this controller activated it, unless
// KeepActive was set, and stops the dispatcher. Deactivation failures go to
// the ErrorHandler.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	active := c.active && !c.keep
	c.mu.Unlock()

	if active {
		if err := c.Deactivate(context.Background(), session.NotifyOthersOnDeactivation); err != nil {
			c.errorHandler.HandleError(fmt.Errorf("deactivate on close: %w", err))
		}
	}
	return c.dispatcher.Stop()
}

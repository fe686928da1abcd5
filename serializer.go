package avfaudio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/shaban/avfaudio/session"
)

// StateVersion is the version written into every saved State.
const StateVersion = "1.0.0"

// State is a snapshot of the session that can be saved and restored.
type State struct {
	Version       string                `json:"version"`
	Configuration session.Configuration `json:"configuration"`
	Active        bool                  `json:"active"`
	Timestamp     time.Time             `json:"timestamp"`
}

// Serializer handles state capture and JSON persistence for a Controller.
type Serializer struct {
	controller *Controller
	mu         sync.RWMutex
	version    string
}

// NewSerializer creates a new serializer for the given controller
func NewSerializer(c *Controller) *Serializer {
	return &Serializer{
		controller: c,
		version:    StateVersion,
	}
}

// GetState captures the current session state
func (s *Serializer) GetState() (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, err := s.controller.session.Configuration()
	if err != nil {
		return State{}, fmt.Errorf("failed to read session configuration: %w", err)
	}
	return State{
		Version:       s.version,
		Configuration: cfg,
		Active:        s.controller.IsActive(),
		Timestamp:     time.Now(),
	}, nil
}

// SetState applies a saved state. The configuration is applied without
// strict validation since it was read back from the session.
func (s *Serializer) SetState(ctx context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ValidateState(state); err != nil {
		return err
	}
	if err := s.controller.apply(ctx, OpRestore, state.Configuration); err != nil {
		return fmt.Errorf("failed to restore configuration: %w", err)
	}

	switch active := s.controller.IsActive(); {
	case state.Active && !active:
		return s.controller.Activate(ctx, 0)
	case !state.Active && active:
		return s.controller.Deactivate(ctx, session.NotifyOthersOnDeactivation)
	}
	return nil
}

// SaveToWriter writes the current state as indented JSON.
func (s *Serializer) SaveToWriter(w io.Writer) error {
	state, err := s.GetState()
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return nil
}

// LoadFromReader decodes a state and applies it.
func (s *Serializer) LoadFromReader(ctx context.Context, r io.Reader) error {
	var state State
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode state: %w", err)
	}
	return s.SetState(ctx, state)
}

// SaveToJSON returns the current state as a JSON string.
func (s *Serializer) SaveToJSON() (string, error) {
	var b strings.Builder
	if err := s.SaveToWriter(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// LoadFromJSON applies a state from a JSON string.
func (s *Serializer) LoadFromJSON(ctx context.Context, data string) error {
	return s.LoadFromReader(ctx, strings.NewReader(data))
}

// GetVersion returns the state version this serializer writes.
func (s *Serializer) GetVersion() string {
	return s.version
}

// IsCompatible reports whether a state with the given version can be loaded.
func (s *Serializer) IsCompatible(version string) bool {
	return version == s.version
}

// ValidateState checks a state before it is applied.
func (s *Serializer) ValidateState(state State) error {
	if !s.IsCompatible(state.Version) {
		return fmt.Errorf("%w: got %q, want %q", ErrIncompatibleState, state.Version, s.version)
	}
	if !state.Configuration.Category.Valid() {
		return fmt.Errorf("%w: %d", session.ErrUnknownCategory, int(state.Configuration.Category))
	}
	if !state.Configuration.Mode.Valid() {
		return fmt.Errorf("%w: %d", session.ErrUnknownMode, int(state.Configuration.Mode))
	}
	return nil
}

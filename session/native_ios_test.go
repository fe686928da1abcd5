//go:build ios && cgo

package session_test

import (
	"testing"

	"github.com/shaban/avfaudio/internal/testutil"
	"github.com/shaban/avfaudio/session"
)

// hardware skips tests that drive the device's real audio session unless
// AVFAUDIO_HW=1, and always under CI.
func hardware(t *testing.T) *session.Session {
	t.Helper()
	if testutil.IsCI() {
		t.Skip("skipped: needs audio hardware")
	}
	testutil.SkipUnlessEnv(t, "AVFAUDIO_HW", "1")
	return session.SharedInstance()
}

func TestCanSetCategory(t *testing.T) {
	s := hardware(t)
	if err := s.SetCategory(session.Ambient); err != nil {
		t.Fatalf("SetCategory(ambient): %v", err)
	}
	c, err := s.Category()
	if err != nil {
		t.Fatalf("Category: %v", err)
	}
	if c != session.Ambient {
		t.Errorf("Category() = %s, want %s", c, session.Ambient)
	}
}

func TestCanSetCategoryWithOptions(t *testing.T) {
	s := hardware(t)
	if err := s.SetCategoryWithOptions(session.PlayAndRecord, session.MixWithOthers|session.DefaultToSpeaker); err != nil {
		t.Fatalf("SetCategoryWithOptions: %v", err)
	}
	o, err := s.CategoryOptions()
	if err != nil {
		t.Fatalf("CategoryOptions: %v", err)
	}
	if !o.Has(session.MixWithOthers) || !o.Has(session.DefaultToSpeaker) {
		t.Errorf("CategoryOptions() = %s", o)
	}
}

func TestActivateDeactivate(t *testing.T) {
	s := hardware(t)
	if err := s.SetCategory(session.Playback); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	if err := s.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if _, err := s.CurrentRoute(); err != nil {
		t.Errorf("CurrentRoute: %v", err)
	}
	if err := s.DeactivateWithOptions(session.NotifyOthersOnDeactivation); err != nil {
		t.Errorf("Deactivate: %v", err)
	}
}

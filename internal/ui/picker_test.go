package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shaban/avfaudio/session"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, p Picker, keys ...string) (Picker, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var m tea.Model
		m, cmd = p.Update(key(k))
		p = m.(Picker)
	}
	return p, cmd
}

func TestNewPicker(t *testing.T) {
	p := NewPicker(session.Configuration{Category: session.Record, Options: session.AllowBluetooth})

	if p.Done() || p.Cancelled() {
		t.Error("expected fresh picker to be neither done nor cancelled")
	}
	cfg := p.Configuration()
	if cfg.Category != session.Record || cfg.Options != session.AllowBluetooth {
		t.Errorf("expected preselected record/allowBluetooth, got %v", cfg)
	}
	if !strings.Contains(p.View(), "> record") {
		t.Errorf("expected cursor on record, view:\n%s", p.View())
	}
}

func TestPickCategoryAndOptions(t *testing.T) {
	p := NewPicker(session.Configuration{})

	p, _ = press(t, p, "down", "down", "down", "down")
	if got := p.Configuration().Category; got != session.PlayAndRecord {
		t.Fatalf("expected playAndRecord, got %s", got)
	}

	p, _ = press(t, p, "enter")
	if p.stage != stageOptions {
		t.Fatal("expected enter to open the options list")
	}
	if len(p.allowed) != len(session.Options()) {
		t.Errorf("expected every option for playAndRecord, got %v", p.allowed)
	}

	// mixWithOthers is first, defaultToSpeaker fourth
	p, _ = press(t, p, "x", "down", "down", "down", "x")
	p, cmd := press(t, p, "enter")
	if !p.Done() {
		t.Error("expected enter in options stage to confirm")
	}
	if cmd == nil {
		t.Error("expected confirm to quit the program")
	}

	want := session.Configuration{
		Category: session.PlayAndRecord,
		Options:  session.MixWithOthers | session.DefaultToSpeaker,
	}
	if got := p.Configuration(); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestToggleClearsOption(t *testing.T) {
	p := NewPicker(session.Configuration{Category: session.Playback, Options: session.DuckOthers})
	p, _ = press(t, p, "enter", "down", "x")
	if p.Configuration().Options != 0 {
		t.Errorf("expected duckOthers cleared, got %s", p.Configuration().Options)
	}
}

func TestCategoryChangeDropsOptions(t *testing.T) {
	p := NewPicker(session.Configuration{Category: session.PlayAndRecord, Options: session.DefaultToSpeaker | session.MixWithOthers})
	// back up to playback
	p, _ = press(t, p, "up", "up", "enter")
	if got := p.Configuration(); got.Category != session.Playback || got.Options != session.MixWithOthers {
		t.Errorf("expected playback keeping only mixWithOthers, got %v", got)
	}
}

func TestAmbientHasNoOptions(t *testing.T) {
	p := NewPicker(session.Configuration{Category: session.Ambient})
	p, _ = press(t, p, "enter", "down", "x")
	if len(p.allowed) != 0 || p.Configuration().Options != 0 {
		t.Errorf("expected no options for ambient, got %v", p.allowed)
	}
	if !strings.Contains(p.View(), "(none)") {
		t.Errorf("expected empty marker, view:\n%s", p.View())
	}
}

func TestModeResetForIncompatibleCategory(t *testing.T) {
	p := NewPicker(session.Configuration{Category: session.PlayAndRecord, Mode: session.ModeVoiceChat})
	if p.Configuration().Mode != session.ModeVoiceChat {
		t.Error("expected voiceChat kept for playAndRecord")
	}
	p, _ = press(t, p, "up")
	if p.Configuration().Mode != session.ModeDefault {
		t.Errorf("expected default mode for record, got %s", p.Configuration().Mode)
	}
}

func TestEscReturnsToCategories(t *testing.T) {
	p := NewPicker(session.Configuration{})
	p, _ = press(t, p, "enter", "esc")
	if p.stage != stageCategory {
		t.Error("expected esc to return to categories")
	}
}

func TestQuitCancels(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		p, cmd := press(t, NewPicker(session.Configuration{}), k)
		if !p.Cancelled() || p.Done() {
			t.Errorf("%s: expected cancelled", k)
		}
		if cmd == nil {
			t.Errorf("%s: expected quit command", k)
		}
	}
}

func TestCursorStaysInRange(t *testing.T) {
	p := NewPicker(session.Configuration{})
	p, _ = press(t, p, "up", "up")
	if p.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", p.cursor)
	}
	for i := 0; i < 20; i++ {
		p, _ = press(t, p, "down")
	}
	if p.cursor != len(session.Categories())-1 {
		t.Errorf("expected cursor on last category, got %d", p.cursor)
	}
}

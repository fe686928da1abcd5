package session

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cat     Category
		opts    CategoryOptions
		wantErr error
	}{
		{"no options", Ambient, 0, nil},
		{"speaker with playAndRecord", PlayAndRecord, MixWithOthers | DefaultToSpeaker, nil},
		{"speaker with playback", Playback, DefaultToSpeaker, ErrInvalidOptions},
		{"mix with ambient", Ambient, MixWithOthers, ErrInvalidOptions},
		{"bluetooth with record", Record, AllowBluetooth, nil},
		{"bluetooth with playback", Playback, AllowBluetooth, ErrInvalidOptions},
		{"interrupt spoken with playback", Playback, InterruptSpokenAudioAndMixWithOthers, nil},
		{"interrupt spoken with record", Record, InterruptSpokenAudioAndMixWithOthers, ErrInvalidOptions},
		{"airplay with multiRoute", MultiRoute, AllowAirPlay, ErrInvalidOptions},
		{"undefined bits", Playback, 0x100, ErrInvalidOptions},
		{"unknown category", Category(99), 0, ErrUnknownCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cat, tt.opts)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	err := Validate(Ambient, MixWithOthers)
	if err == nil || !strings.Contains(err.Error(), "mixWithOthers requires playback, playAndRecord or multiRoute") {
		t.Errorf("unexpected message: %v", err)
	}
	err = Validate(Playback, DefaultToSpeaker)
	if err == nil || !strings.Contains(err.Error(), "defaultToSpeaker requires playAndRecord") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidateMode(t *testing.T) {
	if err := ValidateMode(PlayAndRecord, ModeVoiceChat); err != nil {
		t.Errorf("voiceChat with playAndRecord: %v", err)
	}
	if err := ValidateMode(Playback, ModeVoiceChat); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("voiceChat with playback: got %v", err)
	}
	if err := ValidateMode(Ambient, ModeDefault); err != nil {
		t.Errorf("default mode should fit every category: %v", err)
	}
	if err := ValidateMode(Playback, ModeMoviePlayback); err != nil {
		t.Errorf("moviePlayback with playback: %v", err)
	}
	if err := ValidateMode(Playback, Mode(50)); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}

	cfg := Configuration{Category: Playback, Mode: ModeSpokenAudio, Options: DuckOthers}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Configuration.Validate: %v", err)
	}
	cfg.Mode = ModeVideoChat
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
}

func TestAllowedOptions(t *testing.T) {
	tests := []struct {
		cat  Category
		want CategoryOptions
	}{
		{Ambient, 0},
		{Playback, MixWithOthers | DuckOthers | InterruptSpokenAudioAndMixWithOthers},
		{Record, AllowBluetooth | OverrideMutedMicrophoneInterruption},
		{PlayAndRecord, KnownOptions},
	}
	for _, tt := range tests {
		if got := AllowedOptions(tt.cat); got != tt.want {
			t.Errorf("AllowedOptions(%s) = %s, want %s", tt.cat.Name(), got, tt.want)
		}
	}
}

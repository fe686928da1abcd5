package session

import "fmt"

// Mode specializes the behavior of a category.
// https://developer.apple.com/documentation/avfaudio/avaudiosession/mode
type Mode int

const (
	// ModeDefault is the default mode for every category.
	ModeDefault Mode = iota
	// ModeVoiceChat is for two-way voice communication such as VoIP.
	ModeVoiceChat
	// ModeGameChat is set by Game Kit for voice chat.
	ModeGameChat
	// ModeVideoRecording is for recording video.
	ModeVideoRecording
	// ModeMeasurement minimizes system-supplied signal processing.
	ModeMeasurement
	// ModeMoviePlayback is for playing movie content.
	ModeMoviePlayback
	// ModeVideoChat is for two-way video conferencing.
	ModeVideoChat
	// ModeSpokenAudio is for continuous spoken audio such as podcasts.
	ModeSpokenAudio
	// ModeVoicePrompt is for short spoken prompts such as navigation directions.
	ModeVoicePrompt
)

var modeNames = [...]struct{ short, ident string }{
	ModeDefault:        {"default", "AVAudioSessionModeDefault"},
	ModeVoiceChat:      {"voiceChat", "AVAudioSessionModeVoiceChat"},
	ModeGameChat:       {"gameChat", "AVAudioSessionModeGameChat"},
	ModeVideoRecording: {"videoRecording", "AVAudioSessionModeVideoRecording"},
	ModeMeasurement:    {"measurement", "AVAudioSessionModeMeasurement"},
	ModeMoviePlayback:  {"moviePlayback", "AVAudioSessionModeMoviePlayback"},
	ModeVideoChat:      {"videoChat", "AVAudioSessionModeVideoChat"},
	ModeSpokenAudio:    {"spokenAudio", "AVAudioSessionModeSpokenAudio"},
	ModeVoicePrompt:    {"voicePrompt", "AVAudioSessionModeVoicePrompt"},
}

// Modes returns every mode in declaration order.
func Modes() []Mode {
	out := make([]Mode, len(modeNames))
	for i := range modeNames {
		out[i] = Mode(i)
	}
	return out
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m >= 0 && int(m) < len(modeNames)
}

// String returns the platform identifier, e.g. AVAudioSessionModeVoiceChat.
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m].ident
}

// Name returns the short name, e.g. voiceChat.
func (m Mode) Name() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m].short
}

// ParseMode follows the same rules as ParseCategory. The empty string is
// ModeDefault.
func ParseMode(s string) (Mode, error) {
	key := normalize(s)
	if key == "" {
		return ModeDefault, nil
	}
	for i, n := range modeNames {
		if key == normalize(n.short) || key == normalize(n.ident) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.Name()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

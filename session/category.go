package session

import (
	"fmt"
	"strings"
)

// Category is an audio session category identifier.
// https://developer.apple.com/documentation/avfaudio/avaudiosession/category
type Category int

const (
	// Ambient is for background sounds such as rain or engine noise.
	// Mixes with other music.
	Ambient Category = iota
	// SoloAmbient is for background sounds. Other music will stop playing.
	SoloAmbient
	// Playback is for music tracks.
	Playback
	// Record is for recording audio.
	Record
	// PlayAndRecord is for recording and playing back audio.
	PlayAndRecord
	// AudioProcessing is for using a hardware codec or signal processor while
	// not playing or recording audio. Deprecated by Apple, still forwarded.
	AudioProcessing
	// MultiRoute customizes the use of available audio accessories and built-in
	// hardware, e.g. a USB output and the headphone output carrying separate
	// streams at once. Input is limited to the last-in input port. Eligible
	// inputs are USB audio, the headset mic and the built-in mic; eligible
	// outputs are USB audio, line out, headphones, HDMI and the built-in
	// speaker, which is only allowed when no other eligible output is connected.
	MultiRoute
)

var categoryNames = [...]struct{ short, ident string }{
	Ambient:         {"ambient", "AVAudioSessionCategoryAmbient"},
	SoloAmbient:     {"soloAmbient", "AVAudioSessionCategorySoloAmbient"},
	Playback:        {"playback", "AVAudioSessionCategoryPlayback"},
	Record:          {"record", "AVAudioSessionCategoryRecord"},
	PlayAndRecord:   {"playAndRecord", "AVAudioSessionCategoryPlayAndRecord"},
	AudioProcessing: {"audioProcessing", "AVAudioSessionCategoryAudioProcessing"},
	MultiRoute:      {"multiRoute", "AVAudioSessionCategoryMultiRoute"},
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < len(categoryNames)
}

// String returns the platform identifier, e.g. AVAudioSessionCategoryAmbient.
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c].ident
}

// Name returns the short name, e.g. playAndRecord.
func (c Category) Name() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c].short
}

// ParseCategory accepts a short name in any case or separator style
// ("playAndRecord", "play-and-record", "PLAY_AND_RECORD") or the platform
// identifier.
func ParseCategory(s string) (Category, error) {
	key := normalize(s)
	for i, n := range categoryNames {
		if key == normalize(n.short) || key == normalize(n.ident) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.Name()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// normalize folds case and drops the separators people put in option and
// category names.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.TrimSpace(s) {
		switch r {
		case '-', '_', ' ', '.':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

package session

import "fmt"

// optionCategories lists, per option, the categories the platform documents
// it for. Options missing here are accepted with any category.
var optionCategories = map[CategoryOptions][]Category{
	MixWithOthers:                        {Playback, PlayAndRecord, MultiRoute},
	DuckOthers:                           {Playback, PlayAndRecord, MultiRoute},
	InterruptSpokenAudioAndMixWithOthers: {Playback, PlayAndRecord, MultiRoute},
	AllowBluetooth:                       {Record, PlayAndRecord},
	DefaultToSpeaker:                     {PlayAndRecord},
	AllowBluetoothA2DP:                   {PlayAndRecord},
	AllowAirPlay:                         {PlayAndRecord},
	OverrideMutedMicrophoneInterruption:  {Record, PlayAndRecord},
}

var modeCategories = map[Mode][]Category{
	ModeVoiceChat:      {PlayAndRecord},
	ModeGameChat:       {PlayAndRecord},
	ModeVideoChat:      {PlayAndRecord},
	ModeVideoRecording: {Record, PlayAndRecord},
	ModeMeasurement:    {Playback, Record, PlayAndRecord},
	ModeMoviePlayback:  {Playback},
	ModeSpokenAudio:    {Playback, PlayAndRecord},
	ModeVoicePrompt:    {Playback, PlayAndRecord},
}

// Validate checks o against the categories each option is documented for.
// The composite InterruptSpokenAudioAndMixWithOthers is checked as a whole.
func Validate(c Category, o CategoryOptions) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	if unknown := o.Unknown(); unknown != 0 {
		return fmt.Errorf("%w: undefined bits 0x%x", ErrInvalidOptions, uint(unknown))
	}
	rest := o
	for _, n := range optionNames {
		if rest&n.opt != n.opt {
			continue
		}
		rest &^= n.opt
		if allowed, ok := optionCategories[n.opt]; ok && !containsCategory(allowed, c) {
			return fmt.Errorf("%w: %s requires %s", ErrInvalidOptions, n.name, categoryList(allowed))
		}
	}
	return nil
}

// ValidateMode checks that m is documented for c.
func ValidateMode(c Category, m Mode) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	if allowed, ok := modeCategories[m]; ok && !containsCategory(allowed, c) {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidMode, m.Name(), categoryList(allowed))
	}
	return nil
}

// AllowedOptions returns the named options documented for c.
func AllowedOptions(c Category) CategoryOptions {
	var out CategoryOptions
	for _, opt := range Options() {
		if Validate(c, opt) == nil {
			out |= opt
		}
	}
	return out
}

func containsCategory(list []Category, c Category) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

func categoryList(list []Category) string {
	s := ""
	for i, c := range list {
		switch {
		case i == 0:
		case i == len(list)-1:
			s += " or "
		default:
			s += ", "
		}
		s += c.Name()
	}
	return s
}

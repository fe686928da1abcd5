package session

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// CategoryOptions is the AVAudioSessionCategoryOptions bitmask. Values are the
// platform bit values and compose with |.
// https://developer.apple.com/documentation/avfaudio/avaudiosession/categoryoptions
type CategoryOptions uint

const (
	// MixWithOthers mixes this app's audio with audio from other apps.
	MixWithOthers CategoryOptions = 0x1
	// DuckOthers lowers the volume of other audio while this session plays.
	DuckOthers CategoryOptions = 0x2
	// AllowBluetooth makes Bluetooth hands-free devices available as routes.
	AllowBluetooth CategoryOptions = 0x4
	// DefaultToSpeaker routes to the built-in speaker instead of the receiver.
	DefaultToSpeaker CategoryOptions = 0x8
	// InterruptSpokenAudioAndMixWithOthers pauses spoken audio from other apps
	// and mixes with the rest. It carries the MixWithOthers bit.
	InterruptSpokenAudioAndMixWithOthers CategoryOptions = 0x11
	// AllowBluetoothA2DP allows streaming to Bluetooth devices that support A2DP.
	AllowBluetoothA2DP CategoryOptions = 0x20
	// AllowAirPlay allows streaming to AirPlay devices.
	AllowAirPlay CategoryOptions = 0x40
	// OverrideMutedMicrophoneInterruption keeps the session uninterrupted when
	// the built-in microphone is muted.
	OverrideMutedMicrophoneInterruption CategoryOptions = 0x80
)

// KnownOptions holds every bit the platform defines.
const KnownOptions = MixWithOthers | DuckOthers | AllowBluetooth | DefaultToSpeaker |
	InterruptSpokenAudioAndMixWithOthers | AllowBluetoothA2DP | AllowAirPlay |
	OverrideMutedMicrophoneInterruption

// optionNames is ordered for rendering: the composite option comes first so it
// consumes the MixWithOthers bit it carries.
var optionNames = []struct {
	opt  CategoryOptions
	name string
}{
	{InterruptSpokenAudioAndMixWithOthers, "interruptSpokenAudioAndMixWithOthers"},
	{MixWithOthers, "mixWithOthers"},
	{DuckOthers, "duckOthers"},
	{AllowBluetooth, "allowBluetooth"},
	{DefaultToSpeaker, "defaultToSpeaker"},
	{AllowBluetoothA2DP, "allowBluetoothA2DP"},
	{AllowAirPlay, "allowAirPlay"},
	{OverrideMutedMicrophoneInterruption, "overrideMutedMicrophoneInterruption"},
}

// Options returns every named option in bit order.
func Options() []CategoryOptions {
	return []CategoryOptions{
		MixWithOthers,
		DuckOthers,
		AllowBluetooth,
		DefaultToSpeaker,
		InterruptSpokenAudioAndMixWithOthers,
		AllowBluetoothA2DP,
		AllowAirPlay,
		OverrideMutedMicrophoneInterruption,
	}
}

// Has reports whether every bit of flag is set in o.
func (o CategoryOptions) Has(flag CategoryOptions) bool {
	return flag != 0 && o&flag == flag
}

// Unknown returns the bits the platform does not define.
func (o CategoryOptions) Unknown() CategoryOptions {
	return o &^ KnownOptions
}

// String renders the options as names joined with |, "none" for zero.
func (o CategoryOptions) String() string {
	if o == 0 {
		return "none"
	}
	var parts []string
	rest := o
	for _, n := range optionNames {
		if rest&n.opt == n.opt {
			parts = append(parts, n.name)
			rest &^= n.opt
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseCategoryOptions parses names separated by |, commas or whitespace.
// Numeric values ("0x9", "9") are accepted as raw bits. "" and "none" are zero.
func ParseCategoryOptions(s string) (CategoryOptions, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || unicode.IsSpace(r)
	})
	var out CategoryOptions
	for _, f := range fields {
		opt, err := parseOption(f)
		if err != nil {
			return 0, err
		}
		out |= opt
	}
	return out, nil
}

// ParseCategoryOptionList parses one option per element.
func ParseCategoryOptionList(names []string) (CategoryOptions, error) {
	var out CategoryOptions
	for _, n := range names {
		opt, err := ParseCategoryOptions(n)
		if err != nil {
			return 0, err
		}
		out |= opt
	}
	return out, nil
}

func parseOption(f string) (CategoryOptions, error) {
	key := normalize(f)
	if key == "none" {
		return 0, nil
	}
	for _, n := range optionNames {
		if key == normalize(n.name) {
			return n.opt, nil
		}
	}
	if v, err := strconv.ParseUint(f, 0, 32); err == nil {
		return CategoryOptions(v), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOption, f)
}

func (o CategoryOptions) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *CategoryOptions) UnmarshalText(text []byte) error {
	parsed, err := ParseCategoryOptions(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// SetActiveOptions is the AVAudioSessionSetActiveOptions bitmask.
type SetActiveOptions uint

// NotifyOthersOnDeactivation lets interrupted apps resume when this session
// deactivates.
const NotifyOthersOnDeactivation SetActiveOptions = 0x1

func (o SetActiveOptions) String() string {
	switch o {
	case 0:
		return "none"
	case NotifyOthersOnDeactivation:
		return "notifyOthersOnDeactivation"
	default:
		return fmt.Sprintf("SetActiveOptions(0x%x)", uint(o))
	}
}

package session

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned by every forwarding call on platforms without
	// AVAudioSession.
	ErrUnsupported = errors.New("avfaudio: AVAudioSession is not available on this platform")
	// ErrNoSession is returned when a Session has no backend.
	ErrNoSession = errors.New("avfaudio: no audio session")

	ErrUnknownCategory = errors.New("avfaudio: unknown category")
	ErrUnknownMode     = errors.New("avfaudio: unknown mode")
	ErrUnknownOption   = errors.New("avfaudio: unknown category option")

	// ErrInvalidOptions and ErrInvalidMode wrap Validate failures.
	ErrInvalidOptions = errors.New("avfaudio: options not allowed for category")
	ErrInvalidMode    = errors.New("avfaudio: mode not allowed for category")
)

// ErrorCode is an AVAudioSessionErrorCode. Most are four-character codes.
type ErrorCode int

const (
	ErrorCodeNone                  ErrorCode = 0
	ErrorCodeMediaServicesFailed   ErrorCode = 'm'<<24 | 's'<<16 | 'r'<<8 | 'v'
	ErrorCodeIsBusy                ErrorCode = '!'<<24 | 'a'<<16 | 'c'<<8 | 't'
	ErrorCodeIncompatibleCategory  ErrorCode = '!'<<24 | 'c'<<16 | 'a'<<8 | 't'
	ErrorCodeCannotInterruptOthers ErrorCode = '!'<<24 | 'i'<<16 | 'n'<<8 | 't'
	ErrorCodeMissingEntitlement    ErrorCode = 'e'<<24 | 'n'<<16 | 't'<<8 | '?'
	ErrorCodeSiriIsRecording       ErrorCode = 's'<<24 | 'i'<<16 | 'r'<<8 | 'i'
	ErrorCodeCannotStartPlaying    ErrorCode = '!'<<24 | 'p'<<16 | 'l'<<8 | 'a'
	ErrorCodeCannotStartRecording  ErrorCode = '!'<<24 | 'r'<<16 | 'e'<<8 | 'c'
	ErrorCodeBadParam              ErrorCode = -50
	ErrorCodeInsufficientPriority  ErrorCode = '!'<<24 | 'p'<<16 | 'r'<<8 | 'i'
	ErrorCodeResourceNotAvailable  ErrorCode = '!'<<24 | 'r'<<16 | 'e'<<8 | 's'
	ErrorCodeUnspecified           ErrorCode = 'w'<<24 | 'h'<<16 | 'a'<<8 | 't'
	ErrorCodeExpiredSession        ErrorCode = '!'<<24 | 's'<<16 | 'e'<<8 | 's'
	ErrorCodeSessionNotActive      ErrorCode = 'i'<<24 | 'n'<<16 | 'a'<<8 | 'c'
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeNone:                  "none",
	ErrorCodeMediaServicesFailed:   "mediaServicesFailed",
	ErrorCodeIsBusy:                "isBusy",
	ErrorCodeIncompatibleCategory:  "incompatibleCategory",
	ErrorCodeCannotInterruptOthers: "cannotInterruptOthers",
	ErrorCodeMissingEntitlement:    "missingEntitlement",
	ErrorCodeSiriIsRecording:       "siriIsRecording",
	ErrorCodeCannotStartPlaying:    "cannotStartPlaying",
	ErrorCodeCannotStartRecording:  "cannotStartRecording",
	ErrorCodeBadParam:              "badParam",
	ErrorCodeInsufficientPriority:  "insufficientPriority",
	ErrorCodeResourceNotAvailable:  "resourceNotAvailable",
	ErrorCodeUnspecified:           "unspecified",
	ErrorCodeExpiredSession:        "expiredSession",
	ErrorCodeSessionNotActive:      "sessionNotActive",
}

// FourCC returns the four-character form of the code, or "" when the code is
// not made of printable ASCII.
func (c ErrorCode) FourCC() string {
	u := uint32(c)
	b := []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
	for _, ch := range b {
		if ch < 0x20 || ch > 0x7e {
			return ""
		}
	}
	return string(b)
}

func (c ErrorCode) String() string {
	name, ok := errorCodeNames[c]
	if !ok {
		name = fmt.Sprintf("code %d", int(c))
	}
	if cc := c.FourCC(); cc != "" {
		return fmt.Sprintf("%s '%s'", name, cc)
	}
	return name
}

// Error makes a code usable as an errors.Is target.
func (c ErrorCode) Error() string {
	return "avfaudio: " + c.String()
}

// Error is an NSError returned by AVAudioSession.
type Error struct {
	Op      string // selector that failed, e.g. setActive:error:
	Domain  string
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "failed"
	}
	detail := e.Code.String()
	if e.Domain != "" {
		detail = e.Domain + " " + detail
	}
	if e.Op == "" {
		return fmt.Sprintf("avfaudio: %s (%s)", msg, detail)
	}
	return fmt.Sprintf("avfaudio: %s: %s (%s)", e.Op, msg, detail)
}

// Is matches an ErrorCode target against the code of the NSError.
func (e *Error) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// Package session binds AVAudioSession, the system service that tells iOS how
// an app intends to use audio.
//
// Everything here forwards to [AVAudioSession sharedInstance]:
//   - Category, Mode and CategoryOptions mirror the platform constants and bit values
//   - Session wraps the shared instance and returns the NSError of every call as *Error
//   - Route and Hardware are read-only snapshots of what the OS reports
//
// The native backend is compiled for ios with cgo. On every other platform the
// forwarding calls fail with ErrUnsupported while the constant tables, parsing
// and validation helpers keep working, so configuration can be prepared and
// checked anywhere.
//
// Validation is advisory. The forwarding calls never validate: the OS decides
// what a category accepts, and its answer comes back as an *Error.
package session

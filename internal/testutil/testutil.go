// Package testutil holds helpers shared by the module's tests: a fake
// session.Backend and gates for tests that need real audio hardware.
package testutil

import (
	"os"
	"testing"
)

// SkipUnlessEnv skips t unless the env var key is set to want.
func SkipUnlessEnv(t *testing.T, key, want string) {
	t.Helper()
	if got := os.Getenv(key); got != want {
		t.Skipf("skipped: set %s=%s to run against the device audio session", key, want)
	}
}

// IsCI reports whether the tests run on a CI service, where no audio session
// can be activated.
func IsCI() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "BUILDKITE"} {
		if os.Getenv(key) == "true" {
			return true
		}
	}
	return false
}

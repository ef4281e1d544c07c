// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// homeEnvVars are the per-user base directories config.ConfigDir and
// config.DataDir consult before falling back to the home directory.
var homeEnvVars = []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "APPDATA", "LOCALAPPDATA"}

// IsolateHome points the platform's home variable (USERPROFILE on Windows,
// HOME elsewhere) at dir and unsets the base directory overrides, so that
// config and data paths resolve below dir. The environment is restored when
// the test finishes. Callers must not be parallel.
func IsolateHome(t testing.TB, dir string) {
	t.Helper()

	homeVar := "HOME"
	if runtime.GOOS == "windows" {
		homeVar = "USERPROFILE"
	}
	t.Cleanup(MustSetenv(t, homeVar, dir))
	for _, key := range homeEnvVars {
		t.Cleanup(MustUnsetenv(t, key))
	}
}

// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride redirects ConfigDir for tests. The lookup otherwise
// goes through os.UserHomeDir, which does not reliably honor a HOME set
// via t.Setenv on every platform.
var configDirOverride string

// SetConfigDirOverride points ConfigDir at a fixed directory. Test-only;
// pair with Reset in cleanup.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears the test override so ConfigDir resolves normally again.
func Reset() {
	configDirOverride = ""
}

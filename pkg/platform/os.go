// SPDX-License-Identifier: MPL-2.0

package platform

// GOOS values the config-directory lookup branches on. Named constants so
// the switch in internal/config reads without bare string literals.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

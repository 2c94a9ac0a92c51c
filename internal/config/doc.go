// SPDX-License-Identifier: MPL-2.0

// Package config loads and validates sifbench configuration from CUE
// config files, environment variables, and built-in defaults.
package config

// SPDX-License-Identifier: MPL-2.0

// Command sifbench provisions SWE-bench container artifacts into a local
// SIF store.
package main

func main() {
	Execute()
}

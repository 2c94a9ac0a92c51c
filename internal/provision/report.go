// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// DownstreamEnvScript renders a sourceable shell snippet that points
// benchmark runners and the conversion tool at the provisioned store.
// OH_RUNTIME tells the downstream runner which conversion tool the
// artifacts were built for; an empty runtime defaults to apptainer.
// The snippet is round-tripped through a shell parser so a syntactically
// broken fragment can never be emitted.
func DownstreamEnvScript(storeDir, cacheDir, runtime string) (string, error) {
	if runtime == "" {
		runtime = "apptainer"
	}

	var b strings.Builder
	b.WriteString("# Environment for consuming the provisioned artifact store.\n")
	writeExport(&b, "OH_RUNTIME", runtime)
	writeExport(&b, "SIFBENCH_STORE_DIR", storeDir)
	if cacheDir != "" {
		writeExport(&b, "APPTAINER_CACHEDIR", cacheDir)
		writeExport(&b, "SINGULARITY_CACHEDIR", cacheDir)
	}
	return formatShell(b.String())
}

// PullScript renders a standalone shell script that re-runs the pulls for
// the given work items with the conversion tool directly. Operators use it
// to provision from a machine where this binary is unavailable, or to
// inspect exactly what the pipeline would execute.
func PullScript(tool string, items []WorkItem, storeDir string, force bool) (string, error) {
	if tool == "" {
		tool = "apptainer"
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# Pull commands for the requested instance set.\n")
	b.WriteString("set -u\n")
	b.WriteString(fmt.Sprintf("mkdir -p %s\n", quoteShell(storeDir)))

	forceFlag := ""
	if force {
		forceFlag = " --force"
	}

	for _, item := range items {
		dest := filepath.Join(storeDir, item.ArtifactName)
		b.WriteString(fmt.Sprintf("%s pull%s %s %s\n",
			quoteShell(tool), forceFlag, quoteShell(dest), quoteShell(item.Reference.PullRef())))
	}

	return formatShell(b.String())
}

// writeExport appends one export line with a safely quoted value.
func writeExport(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "export %s=%s\n", key, quoteShell(value))
}

// quoteShell quotes a value for POSIX shell. Quoting only fails for
// values no shell string can represent (NUL bytes); fall back to single
// quotes so the output stays parseable and the round-trip check catches
// anything truly broken.
func quoteShell(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return quoted
}

// formatShell parses and re-prints a shell fragment in canonical form.
func formatShell(src string) (string, error) {
	parser := syntax.NewParser(syntax.KeepComments(true))
	file, err := parser.Parse(strings.NewReader(src), "")
	if err != nil {
		return "", fmt.Errorf("internal error: generated shell does not parse: %w", err)
	}

	var out strings.Builder
	printer := syntax.NewPrinter()
	if err := printer.Print(&out, file); err != nil {
		return "", fmt.Errorf("failed to render shell: %w", err)
	}
	return out.String(), nil
}

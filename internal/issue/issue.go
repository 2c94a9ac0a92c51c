// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies an entry in the issue catalog.
type Id int

const (
	EngineNotFoundId Id = iota + 1
	ManifestMissingId
	StoreUnreadableId
	ConfigLoadFailedId
)

// MarkdownMsg is a help page in Markdown, rendered with glamour for terminals.
type MarkdownMsg string

// Issue is a catalog entry describing a fatal error class and how to get
// out of it. Issues cover only the errors that abort the whole pipeline;
// per-instance failures are reported through Outcomes instead.
type Issue struct {
	id    Id
	mdMsg MarkdownMsg
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render returns the issue's help page rendered for the terminal.
func (i *Issue) Render() (string, error) {
	return render(string(i.mdMsg), "auto")
}

var (
	render = glamour.Render

	engineNotFoundIssue = &Issue{
		id: EngineNotFoundId,
		mdMsg: `
# No Apptainer or Singularity executable found!

sifbench converts registry images into SIF archives by invoking the
Apptainer (or Singularity) CLI, but neither executable is on PATH.

## Things you can try:
- Install Apptainer: https://apptainer.org/docs/admin/main/installation.html
- On HPC clusters, load the module first:
~~~
$ module load apptainer
~~~
- Point sifbench at a specific executable:
~~~
$ export APPTAINER_EXECUTABLE=/opt/apptainer/bin/apptainer
~~~`,
	}

	manifestMissingIssue = &Issue{
		id: ManifestMissingId,
		mdMsg: `
# No instances to provision!

sifbench needs a list of instance IDs, supplied either inline or via a
manifest file, and neither was given.

## Things you can try:
- Pass IDs inline:
~~~
$ sifbench pull --instance-ids astropy__astropy-12907,django__django-11001
~~~
- Or point at a manifest file (one ID per line, '#' comments allowed):
~~~
$ sifbench pull --manifest instances.txt
~~~`,
	}

	storeUnreadableIssue = &Issue{
		id: StoreUnreadableId,
		mdMsg: `
# Artifact store is unreadable!

The store directory is the ground truth for what has been provisioned;
when it cannot be scanned, no summary can be trusted.

## Things you can try:
- Check that the directory exists and is readable:
~~~
$ ls -ld "$SIFBENCH_STORE_DIR"
~~~
- Override the location:
~~~
$ sifbench pull --store-dir /scratch/$USER/sif-images ...
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config file contains syntax errors or values that do not match the
schema.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- concurrency set below 1

## Things you can try:
- Regenerate a default config:
~~~
$ sifbench config init
~~~
- Inspect the effective configuration:
~~~
$ sifbench config show
~~~`,
	}

	catalog = []*Issue{
		engineNotFoundIssue,
		manifestMissingIssue,
		storeUnreadableIssue,
		configLoadFailedIssue,
	}
)

// Lookup returns the catalog issue with the given id, or nil if unknown.
func Lookup(id Id) *Issue {
	idx := slices.IndexFunc(catalog, func(i *Issue) bool { return i.id == id })
	if idx < 0 {
		return nil
	}
	return catalog[idx]
}

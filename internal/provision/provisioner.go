// SPDX-License-Identifier: MPL-2.0

// Package provision implements the artifact provisioning pipeline:
// resolving instance IDs to registry references, pulling and converting
// each into the local store with bounded parallelism, and reporting
// per-instance outcomes.
package provision

import (
	"context"
	"errors"
	"os"

	"sifbench/internal/container"
	"sifbench/internal/registry"
	"sifbench/internal/store"

	"github.com/charmbracelet/log"
)

const (
	// StatusSkipped means the artifact was already present; no work was done.
	StatusSkipped Status = "skipped"
	// StatusSucceeded means the artifact was pulled and committed this run.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the instance could not be provisioned.
	StatusFailed Status = "failed"
)

type (
	// Status classifies the result of provisioning one instance.
	Status string

	// WorkItem is one resolved unit of provisioning work.
	WorkItem struct {
		// ID is the raw instance identifier.
		ID registry.InstanceID
		// Reference is the resolved remote image reference.
		Reference registry.ImageReference
		// ArtifactName is the store-local file name for the converted SIF.
		ArtifactName string
	}

	// Outcome is the per-instance result of a provisioning attempt.
	// A failed outcome is a data point, never a pipeline abort: the run
	// keeps going and the caller aggregates.
	Outcome struct {
		// ID is the raw instance identifier.
		ID registry.InstanceID
		// ArtifactName is the resolved artifact file name. Empty when
		// resolution itself failed.
		ArtifactName string
		// Status classifies the result.
		Status Status
		// LogPath points at the retained failure log. Set only on failure.
		LogPath string
		// Transient hints that the failure looked like a network or
		// registry hiccup and a plain re-run may succeed.
		Transient bool
		// Err is the failure cause. Nil unless Status is StatusFailed.
		Err error
	}

	// Options configures a Provisioner.
	Options struct {
		// Engine performs the pull-and-convert. Required.
		Engine container.Engine
		// Store is the local artifact destination. Required.
		Store *store.Store
		// Logs manages per-instance failure logs. Required.
		Logs *store.FailureLogs
		// Resolver maps instance IDs to references and artifact names.
		Resolver registry.Resolver
		// Force re-pulls artifacts that already exist in the store.
		Force bool
		// CacheDir is the scratch directory for the conversion tool.
		CacheDir string
		// Logger receives progress lines. Defaults to stderr.
		Logger *log.Logger
	}

	// Provisioner drives the per-instance pull/convert/commit sequence.
	Provisioner struct {
		engine   container.Engine
		store    *store.Store
		logs     *store.FailureLogs
		resolver registry.Resolver
		force    bool
		cacheDir string
		logger   *log.Logger
	}
)

// New creates a Provisioner. The resolver is validated up front: a missing
// namespace or repository is a configuration error and must abort before
// any work starts.
func New(opts Options) (*Provisioner, error) {
	if opts.Engine == nil {
		return nil, errors.New("provisioner requires an engine")
	}
	if opts.Store == nil {
		return nil, errors.New("provisioner requires a store")
	}
	if opts.Logs == nil {
		return nil, errors.New("provisioner requires a failure log manager")
	}
	if err := opts.Resolver.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "provision",
		})
	}

	return &Provisioner{
		engine:   opts.Engine,
		store:    opts.Store,
		logs:     opts.Logs,
		resolver: opts.Resolver,
		force:    opts.Force,
		cacheDir: opts.CacheDir,
		logger:   logger,
	}, nil
}

// Resolve maps one instance ID to its work item.
func (p *Provisioner) Resolve(id registry.InstanceID) (WorkItem, error) {
	ref, name, err := p.resolver.Resolve(id)
	if err != nil {
		return WorkItem{}, err
	}
	return WorkItem{ID: id, Reference: ref, ArtifactName: name}, nil
}

// ProvisionOne provisions a single instance end to end. Every failure mode
// maps to a returned Outcome; the method itself never aborts the run.
//
// The download lands at the store's staging path and is renamed into place
// only after the tool exits cleanly, so an interrupted run can never leave
// a partial file that a later run would mistake for a completed artifact.
func (p *Provisioner) ProvisionOne(ctx context.Context, id registry.InstanceID) Outcome {
	item, err := p.Resolve(id)
	if err != nil {
		p.logger.Error("cannot resolve instance", "instance", id, "err", err)
		return Outcome{ID: id, Status: StatusFailed, Err: err}
	}

	if !p.force && p.store.Exists(item.ArtifactName) {
		p.logger.Info("already provisioned, skipping", "instance", id, "artifact", item.ArtifactName)
		return Outcome{ID: id, ArtifactName: item.ArtifactName, Status: StatusSkipped}
	}

	p.logger.Info("pulling", "instance", id, "reference", item.Reference.PullRef())

	logFile, err := p.logs.Create(string(id))
	if err != nil {
		return Outcome{ID: id, ArtifactName: item.ArtifactName, Status: StatusFailed, Err: err}
	}

	pullErr := p.engine.Pull(ctx, container.PullOptions{
		Reference: item.Reference.PullRef(),
		DestPath:  p.store.StagingPath(item.ArtifactName),
		// The staging path may hold leftovers of an interrupted attempt;
		// always let the tool overwrite it.
		Force:    true,
		CacheDir: p.cacheDir,
		Output:   logFile,
	})
	_ = logFile.Close() // Flush the transcript; error non-critical

	if pullErr != nil {
		p.store.DiscardStaging(item.ArtifactName)
		p.logger.Error("pull failed", "instance", id, "log", p.logs.Path(string(id)), "err", pullErr)
		return Outcome{
			ID:           id,
			ArtifactName: item.ArtifactName,
			Status:       StatusFailed,
			LogPath:      p.logs.Path(string(id)),
			Transient:    container.IsTransientError(pullErr),
			Err:          pullErr,
		}
	}

	if err := p.store.Commit(item.ArtifactName); err != nil {
		p.logger.Error("commit failed", "instance", id, "err", err)
		return Outcome{
			ID:           id,
			ArtifactName: item.ArtifactName,
			Status:       StatusFailed,
			LogPath:      p.logs.Path(string(id)),
			Err:          err,
		}
	}

	// Success: the transcript has no diagnostic value anymore.
	if err := p.logs.Remove(string(id)); err != nil {
		p.logger.Warn("could not remove stale failure log", "instance", id, "err", err)
	}

	p.logger.Info("provisioned", "instance", id, "artifact", item.ArtifactName)
	return Outcome{ID: id, ArtifactName: item.ArtifactName, Status: StatusSucceeded}
}

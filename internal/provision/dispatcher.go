// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"sync"

	"sifbench/internal/registry"
)

// Run provisions every instance in ids with at most concurrency pulls in
// flight, and returns one Outcome per input in input order. The run is
// best-effort: a failed instance never stops the others, and cancellation
// marks the not-yet-started remainder as failed rather than dropping it.
func (p *Provisioner) Run(ctx context.Context, ids []registry.InstanceID, concurrency int) []Outcome {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(ids) {
		concurrency = len(ids)
	}

	outcomes := make([]Outcome, len(ids))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					outcomes[i] = Outcome{ID: ids[i], Status: StatusFailed, Err: err}
					continue
				}
				outcomes[i] = p.ProvisionOne(ctx, ids[i])
			}
		}()
	}

	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// CountFailed returns how many outcomes failed.
func CountFailed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == StatusFailed {
			n++
		}
	}
	return n
}

// ArtifactNames returns the resolved artifact name per outcome, preserving
// order. Unresolved instances contribute an empty name so downstream
// summaries still count them as requested-and-failed.
func ArtifactNames(outcomes []Outcome) []string {
	names := make([]string, len(outcomes))
	for i, o := range outcomes {
		names[i] = o.ArtifactName
	}
	return names
}

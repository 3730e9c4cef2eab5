// Package service wires providers, the signal engine, the models and the
// repositories into the batch jobs the scheduler runs.
package service

import "fmt"

// JobSummary reports per-item outcomes for one batch job run. Jobs never
// abort the batch on a single item; failures land in Errored and the run
// continues.
type JobSummary struct {
	Succeeded int
	Skipped   int
	Errored   int
}

// String renders the summary for log output
func (s JobSummary) String() string {
	return fmt.Sprintf("succeeded=%d skipped=%d errored=%d", s.Succeeded, s.Skipped, s.Errored)
}

// Package pipeline applies the ingestion transform that every incoming record
// passes through before it is persisted. A stage that fails aborts the whole
// run, which in turn aborts persistence without partial writes.
package pipeline

import (
	"context"
	"time"
)

// Draft is a record as submitted by a client, before the store has assigned
// an identity to it.
type Draft struct {
	Name        string
	Description string
	Price       float64
}

// Stage transforms a draft record. Stages run sequentially; returning an
// error aborts the pipeline and every stage after it.
type Stage func(ctx context.Context, draft Draft) (Draft, error)

// Pipeline is an ordered chain of stages.
type Pipeline struct {
	stages []Stage
}

// New builds a pipeline from the supplied stages. An empty pipeline is the
// identity transform.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run pushes the draft through every stage, honouring context cancellation
// between stages.
func (p *Pipeline) Run(ctx context.Context, draft Draft) (Draft, error) {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return draft, err
		}

		var err error
		draft, err = stage(ctx, draft)
		if err != nil {
			return draft, err
		}
	}
	return draft, nil
}

// DelayStage simulates non-trivial processing work (validation, enrichment)
// by sleeping for the configured duration. It respects cancellation and
// otherwise passes the draft through unchanged.
func DelayStage(delay time.Duration) Stage {
	return func(ctx context.Context, draft Draft) (Draft, error) {
		if delay <= 0 {
			return draft, nil
		}

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return draft, ctx.Err()
		case <-timer.C:
			return draft, nil
		}
	}
}

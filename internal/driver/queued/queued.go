// Package queued implements spec.md §4.8's "Queued driver": a fixed
// pool of workers pulling ready CallNodes from a shared queue, instead
// of internal/driver.Sequential's single topologically-ordered pass.
package queued

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mrSundvoll/xun/internal/blueprint"
	"github.com/mrSundvoll/xun/internal/driver"
	"github.com/mrSundvoll/xun/internal/store"
)

// Queued is a driver.Driver that runs a Blueprint's graph across a
// fixed number of worker goroutines. A node becomes ready the instant
// every predecessor it depends on has completed, rather than waiting
// for the rest of a single global order to catch up — so, unlike
// Sequential, two independent branches of the graph can run
// concurrently. At-most-once execution per (CallNode, image hash) still
// holds: a node is dispatched to exactly one worker, once, the moment
// its in-degree reaches zero.
type Queued struct {
	Workers int
}

// New creates a Queued driver with the given worker count. A count <= 0
// is treated as 1 (Sequential's single-worker behavior, but driven
// through the same ready-queue machinery).
func New(workers int) *Queued {
	if workers <= 0 {
		workers = 1
	}
	return &Queued{Workers: workers}
}

// Execute implements driver.Driver. Workers run until the ready queue
// is permanently empty (every node completed) or a node's execution
// fails: on failure, already-dispatched nodes run to completion (spec.md
// §5: "cancellation...observed between call dispatches, not mid-call"),
// no new node is dispatched, and the first error is returned.
func (q *Queued) Execute(bp *blueprint.Blueprint, accessor *store.Accessor) (any, error) {
	sched := driver.NewScheduler(bp)
	if sched.Remaining() == 0 {
		return driver.ExecNode(bp, accessor, bp.Entry)
	}

	g, ctx := errgroup.WithContext(context.Background())
	go func() {
		<-ctx.Done()
		sched.Cancel()
	}()

	for i := 0; i < q.Workers; i++ {
		g.Go(func() error {
			for {
				node, ok := sched.Pop()
				if !ok {
					return nil
				}
				if _, err := driver.ExecNode(bp, accessor, node); err != nil {
					sched.Fail(err)
					return err
				}
				sched.Complete(node)
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return driver.ExecNode(bp, accessor, bp.Entry)
}

package driver

import (
	"sync"

	"github.com/mrSundvoll/xun/internal/blueprint"
	"github.com/mrSundvoll/xun/internal/callnode"
)

// Scheduler tracks each node's remaining in-degree and the current ready
// set for one Blueprint's graph, guarded by a single mutex: the graph
// itself never changes once built (spec.md §5, "function images and the
// graph are immutable after blueprint construction"), only this
// bookkeeping does. It is shared by internal/driver/queued (dispatches
// ready nodes to local goroutines) and internal/driver/remoteworker
// (dispatches them over gRPC to separate worker processes) — both need
// identical ready-queue bookkeeping and differ only in how a popped node
// is actually run.
type Scheduler struct {
	mu         sync.Mutex
	cond       *sync.Cond
	ready      []*callnode.CallNode
	indegree   map[callnode.Hash]int
	successors map[callnode.Hash][]*callnode.CallNode
	remaining  int
	failed     bool
}

// NewScheduler builds a Scheduler over bp's merged graph, with every
// zero-in-degree node already enqueued.
func NewScheduler(bp *blueprint.Blueprint) *Scheduler {
	nodes := bp.Graph.Nodes()
	s := &Scheduler{
		indegree:   make(map[callnode.Hash]int, len(nodes)),
		successors: make(map[callnode.Hash][]*callnode.CallNode, len(nodes)),
		remaining:  len(nodes),
	}
	s.cond = sync.NewCond(&s.mu)

	for _, n := range nodes {
		s.indegree[n.Hash()] = 0
	}
	for _, n := range nodes {
		succs := bp.Graph.Successors(n)
		s.successors[n.Hash()] = succs
		for _, succ := range succs {
			s.indegree[succ.Hash()]++
		}
	}
	for _, n := range nodes {
		if s.indegree[n.Hash()] == 0 {
			s.ready = append(s.ready, n)
		}
	}
	return s
}

// Remaining reports how many nodes have not yet completed.
func (s *Scheduler) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Pop blocks until a node is ready to dispatch, the run has failed, or
// every node has completed. The second return is false in the latter
// two cases, telling the caller's worker loop to exit.
func (s *Scheduler) Pop() (*callnode.CallNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		// Checked before the ready queue: once failed, no node not
		// already dispatched may start, even if others are sitting ready
		// (spec.md §5: a failure "stops scheduling new nodes").
		if s.failed {
			return nil, false
		}
		if len(s.ready) > 0 {
			n := s.ready[0]
			s.ready = s.ready[1:]
			return n, true
		}
		if s.remaining == 0 {
			return nil, false
		}
		s.cond.Wait()
	}
}

// Complete marks node done, decrements every successor's in-degree, and
// enqueues any that just reached zero.
func (s *Scheduler) Complete(node *callnode.CallNode) {
	s.mu.Lock()
	s.remaining--
	for _, succ := range s.successors[node.Hash()] {
		h := succ.Hash()
		s.indegree[h]--
		if s.indegree[h] == 0 {
			s.ready = append(s.ready, succ)
		}
	}
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Fail marks the run failed: no further node may be popped.
func (s *Scheduler) Fail(err error) {
	_ = err
	s.mu.Lock()
	s.failed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Cancel wakes every worker blocked in Pop once an external context is
// cancelled (e.g. the first worker error in an errgroup), so no worker
// is left waiting on a queue that will never receive more work.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	s.failed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

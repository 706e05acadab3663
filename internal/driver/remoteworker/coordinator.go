package remoteworker

import (
	"context"
	"errors"
	"sync"

	"github.com/jhump/protoreflect/dynamic"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mrSundvoll/xun/internal/blueprint"
	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/driver"
	"github.com/mrSundvoll/xun/internal/store"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// RemoteWorker is a driver.Driver that schedules a Blueprint's graph the
// same way internal/driver/queued does (an in-degree-tracked ready
// queue, one dispatch per node, failure stops further scheduling and
// drains in-flight dispatches), but hands each ready node to one of a
// fixed set of remote worker processes over the Dispatch gRPC service
// instead of running it in a local goroutine.
type RemoteWorker struct {
	conns []*grpc.ClientConn
}

// Dial connects to every worker address in addrs.
func Dial(addrs []string) (*RemoteWorker, error) {
	if _, err := loadSchema(); err != nil {
		return nil, err
	}
	conns := make([]*grpc.ClientConn, 0, len(addrs))
	for _, addr := range addrs {
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			for _, c := range conns {
				c.Close()
			}
			return nil, err
		}
		conns = append(conns, conn)
	}
	return &RemoteWorker{conns: conns}, nil
}

// Close releases every worker connection.
func (r *RemoteWorker) Close() error {
	var first error
	for _, c := range r.conns {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Execute implements driver.Driver. accessor must be backed by the same
// shared store (typically internal/rpcstore) every dialed worker
// process was started against, so a node's result becomes visible to
// the coordinator the moment the worker that ran it reports success.
func (r *RemoteWorker) Execute(bp *blueprint.Blueprint, accessor *store.Accessor) (any, error) {
	if len(r.conns) == 0 {
		return nil, xunerr.NewValueError("remoteworker: no worker connections dialed")
	}

	sched := driver.NewScheduler(bp)
	if sched.Remaining() == 0 {
		return driver.ExecNode(bp, accessor, bp.Entry)
	}

	g, ctx := errgroup.WithContext(context.Background())
	go func() {
		<-ctx.Done()
		sched.Cancel()
	}()

	var next uint64
	var nextMu sync.Mutex
	pickConn := func() *grpc.ClientConn {
		nextMu.Lock()
		defer nextMu.Unlock()
		c := r.conns[next%uint64(len(r.conns))]
		next++
		return c
	}

	workers := len(r.conns)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				node, ok := sched.Pop()
				if !ok {
					return nil
				}
				if err := dispatch(ctx, pickConn(), node); err != nil {
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

func dispatch(ctx context.Context, conn *grpc.ClientConn, node *callnode.CallNode) error {
	sch, _ := loadSchema()
	req := dynamic.NewMessage(sch.callRef)
	h := node.Hash()
	req.SetFieldByName("call_hash", h[:])

	resp := dynamic.NewMessage(sch.result)
	if err := conn.Invoke(ctx, "/xun.remoteworker.Dispatch/ExecuteCall", req, resp); err != nil {
		return err
	}
	if ok, _ := resp.GetFieldByName("ok").(bool); !ok {
		msg, _ := resp.GetFieldByName("error_message").(string)
		return xunerr.NewFunctionError(node.Function, errors.New(msg))
	}
	return nil
}

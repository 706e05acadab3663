// Package remoteworker implements the distributed rendition of
// internal/driver/queued (SPEC_FULL.md §3): a Dispatch gRPC service lets
// a coordinator process hand individual CallNodes to separate worker
// processes, all sharing one store through internal/rpcstore, instead of
// goroutines sharing memory directly. Both satisfy driver.Driver,
// mirroring the teacher's internal/backend package (one interface, two
// executors — here, in-process vs distributed).
//
// Every process in a remoteworker fleet must be started against the
// identical entry invocation: blueprint.Build is deterministic given the
// same FunctionImages and arguments, so a worker can be handed just a
// CallNode's hash and find the matching node in its own, independently
// built copy of the same Blueprint — no CallNode, Image, or closure ever
// needs to cross the wire itself.
package remoteworker

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/mrSundvoll/xun/internal/blueprint"
	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/driver"
	"github.com/mrSundvoll/xun/internal/store"
)

// Worker runs CallNodes dispatched to it over the Dispatch service
// against its own copy of bp, storing results through accessor.
type Worker struct {
	bp       *blueprint.Blueprint
	accessor *store.Accessor
	byHash   map[callnode.Hash]*callnode.CallNode
}

// NewWorker indexes bp's nodes by hash for ExecuteCall lookups.
func NewWorker(bp *blueprint.Blueprint, accessor *store.Accessor) *Worker {
	w := &Worker{bp: bp, accessor: accessor, byHash: make(map[callnode.Hash]*callnode.CallNode)}
	for _, n := range bp.Graph.Nodes() {
		w.byHash[n.Hash()] = n
	}
	return w
}

// Register builds the Dispatch grpc.ServiceDesc and registers w against
// srv.
func (w *Worker) Register(srv *grpc.Server) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}
	desc := &grpc.ServiceDesc{
		ServiceName: sch.service.GetFullyQualifiedName(),
		HandlerType: (*any)(nil),
		Metadata:    sch.service.GetFile().GetName(),
	}
	for _, method := range sch.service.GetMethods() {
		md := method
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				return srv.(*Worker).executeCall(dec)
			},
		})
	}
	srv.RegisterService(desc, w)
	return nil
}

func (w *Worker) executeCall(dec func(any) error) (*dynamic.Message, error) {
	sch, _ := loadSchema()
	in := dynamic.NewMessage(sch.callRef)
	if err := dec(in); err != nil {
		return nil, err
	}
	raw, _ := in.GetFieldByName("call_hash").([]byte)
	var h callnode.Hash
	copy(h[:], raw)

	resp := dynamic.NewMessage(sch.result)
	node, ok := w.byHash[h]
	if !ok {
		resp.SetFieldByName("ok", false)
		resp.SetFieldByName("error_message", fmt.Sprintf("remoteworker: unknown call hash %x", h))
		return resp, nil
	}

	if _, err := driver.ExecNode(w.bp, w.accessor, node); err != nil {
		resp.SetFieldByName("ok", false)
		resp.SetFieldByName("error_message", err.Error())
		return resp, nil
	}
	resp.SetFieldByName("ok", true)
	return resp, nil
}


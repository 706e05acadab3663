package remoteworker

import (
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

// protoSource is the Dispatch wire schema: a CallRef names which node to
// run by its structural hash alone (the worker already holds the same
// Blueprint the coordinator does, built identically from the same entry
// invocation, so the hash is enough to find the matching node in its own
// copy of bp.Graph.Nodes()). Compiled at runtime exactly as
// internal/rpcstore's schema is.
const protoSource = `
syntax = "proto3";
package xun.remoteworker;

message CallRef {
  bytes call_hash = 1;
}

message ExecuteResult {
  bool ok = 1;
  string error_message = 2;
}

service Dispatch {
  rpc ExecuteCall(CallRef) returns (ExecuteResult);
}
`

const protoFilename = "xun_remoteworker.proto"

type schema struct {
	service  *desc.ServiceDescriptor
	callRef  *desc.MessageDescriptor
	result   *desc.MessageDescriptor
}

var (
	schemaOnce sync.Once
	schemaVal  *schema
	schemaErr  error
)

func loadSchema() (*schema, error) {
	schemaOnce.Do(func() {
		parser := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{protoFilename: protoSource}),
		}
		fds, err := parser.ParseFiles(protoFilename)
		if err != nil {
			schemaErr = err
			return
		}
		fd := fds[0]
		svc := fd.FindService("xun.remoteworker.Dispatch")
		callRef := fd.FindMessage("xun.remoteworker.CallRef")
		result := fd.FindMessage("xun.remoteworker.ExecuteResult")
		if svc == nil || callRef == nil || result == nil {
			schemaErr = errNotFound("xun.remoteworker schema")
			return
		}
		schemaVal = &schema{service: svc, callRef: callRef, result: result}
	})
	return schemaVal, schemaErr
}

type errNotFound string

func (e errNotFound) Error() string {
	return "remoteworker: " + string(e) + " not found in compiled schema"
}

package rpcstore

import (
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

// protoSource is the RemoteStore wire schema (SPEC_FULL.md §3): a store
// key is just the (call_hash, version_hash) pair a Store already keys
// on (see sqlitestore's identical key shape), never a whole CallNode —
// values stay the opaque gob blobs store.Accessor already produces.
// Compiled at runtime via protoparse, the same in-memory-source pattern
// the teacher's grpcLoadProto/objectToDynamicMessage machinery uses for
// disk files, with no protoc step and no generated .pb.go.
const protoSource = `
syntax = "proto3";
package xun.rpcstore;

message StoreKey {
  bytes call_hash = 1;
  bytes version_hash = 2;
}

message ContainsRequest { StoreKey key = 1; }
message ContainsResponse { bool exists = 1; }

message GetRequest { StoreKey key = 1; }
message GetResponse { bytes value = 1; }

message PutRequest {
  StoreKey key = 1;
  bytes value = 2;
  string run_id = 3;
}
message PutResponse {}

service RemoteStore {
  rpc Contains(ContainsRequest) returns (ContainsResponse);
  rpc Get(GetRequest) returns (GetResponse);
  rpc Put(PutRequest) returns (PutResponse);
}
`

const protoFilename = "xun_rpcstore.proto"

// schema bundles every descriptor both the client and server side need,
// parsed once and reused for the lifetime of the process.
type schema struct {
	service *desc.ServiceDescriptor

	storeKey *desc.MessageDescriptor

	containsReq  *desc.MessageDescriptor
	containsResp *desc.MessageDescriptor
	getReq       *desc.MessageDescriptor
	getResp      *desc.MessageDescriptor
	putReq       *desc.MessageDescriptor
	putResp      *desc.MessageDescriptor
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

		svc := fd.FindService("xun.rpcstore.RemoteStore")
		if svc == nil {
			schemaErr = errNotFound("service xun.rpcstore.RemoteStore")
			return
		}

		msg := func(name string) (*desc.MessageDescriptor, error) {
			m := fd.FindMessage("xun.rpcstore." + name)
			if m == nil {
				return nil, errNotFound("message xun.rpcstore." + name)
			}
			return m, nil
		}

		s := &schema{service: svc}
		for _, pair := range []struct {
			name string
			dst  **desc.MessageDescriptor
		}{
			{"StoreKey", &s.storeKey},
			{"ContainsRequest", &s.containsReq},
			{"ContainsResponse", &s.containsResp},
			{"GetRequest", &s.getReq},
			{"GetResponse", &s.getResp},
			{"PutRequest", &s.putReq},
			{"PutResponse", &s.putResp},
		} {
			m, err := msg(pair.name)
			if err != nil {
				schemaErr = err
				return
			}
			*pair.dst = m
		}
		schemaVal = s
	})
	return schemaVal, schemaErr
}

type errNotFound string

func (e errNotFound) Error() string { return "rpcstore: " + string(e) + " not found in compiled schema" }

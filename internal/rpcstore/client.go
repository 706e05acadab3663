package rpcstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/store"
)

// Client is a store.Store that forwards every operation to a RemoteStore
// gRPC service, for a remote worker fleet (internal/driver/remoteworker)
// sharing one store across processes (SPEC_FULL.md §3). Every Put this
// client makes is stamped with the same run ID, so a store shared across
// concurrent runs can be audited.
type Client struct {
	conn   *grpc.ClientConn
	schema *schema
	runID  uuid.UUID
}

// Dial connects to a RemoteStore server at target. runID identifies the
// run this Client's Puts belong to.
func Dial(target string, runID uuid.UUID) (*Client, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, schema: s, runID: runID}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) keyMessage(key store.Key) *dynamic.Message {
	msg := dynamic.NewMessage(c.schema.storeKey)
	callHash := key.Call.Hash()
	versionHash := key.Version
	msg.SetFieldByName("call_hash", callHash[:])
	msg.SetFieldByName("version_hash", versionHash[:])
	return msg
}

// Contains implements store.Store.
func (c *Client) Contains(key store.Key) (bool, error) {
	req := dynamic.NewMessage(c.schema.containsReq)
	req.SetFieldByName("key", c.keyMessage(key))
	resp := dynamic.NewMessage(c.schema.containsResp)
	if err := c.conn.Invoke(context.Background(), "/xun.rpcstore.RemoteStore/Contains", req, resp); err != nil {
		return false, err
	}
	exists, _ := resp.GetFieldByName("exists").(bool)
	return exists, nil
}

// Get implements store.Store.
func (c *Client) Get(key store.Key) ([]byte, error) {
	req := dynamic.NewMessage(c.schema.getReq)
	req.SetFieldByName("key", c.keyMessage(key))
	resp := dynamic.NewMessage(c.schema.getResp)
	if err := c.conn.Invoke(context.Background(), "/xun.rpcstore.RemoteStore/Get", req, resp); err != nil {
		return nil, err
	}
	value, _ := resp.GetFieldByName("value").([]byte)
	return value, nil
}

// Put implements store.Store.
func (c *Client) Put(key store.Key, value []byte) error {
	req := dynamic.NewMessage(c.schema.putReq)
	req.SetFieldByName("key", c.keyMessage(key))
	req.SetFieldByName("value", value)
	req.SetFieldByName("run_id", c.runID.String())
	resp := dynamic.NewMessage(c.schema.putResp)
	return c.conn.Invoke(context.Background(), "/xun.rpcstore.RemoteStore/Put", req, resp)
}

// keyFromWire is the server-side mirror of keyMessage: rebuilding a
// store.Key from the (call_hash, version_hash) pair a client sent,
// using callnode.FromHash since a Store only ever inspects a Key's
// Hash(), never the CallNode's structure directly.
func keyFromWire(msg *dynamic.Message) store.Key {
	var call callnode.Hash
	var version callnode.Hash
	copy(call[:], fieldBytes(msg, "call_hash"))
	copy(version[:], fieldBytes(msg, "version_hash"))
	return store.Key{Call: callnode.FromHash(call), Version: version}
}

func fieldBytes(msg *dynamic.Message, name string) []byte {
	b, _ := msg.GetFieldByName(name).([]byte)
	return b
}

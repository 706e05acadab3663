package callnode

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"github.com/mrSundvoll/xun/internal/astutil"
)

// Hash is a fixed-width structural digest. spec.md §6 permits only
// equality and XOR on hashes; both are defined here. The digest function
// (sha256) is collision-resistant, grounded on the same sha256+hex
// pattern the teacher's internal/ext/cache.go uses to key its binary
// cache.
type Hash [sha256.Size]byte

// Equal reports byte-for-byte equality.
func (h Hash) Equal(o Hash) bool { return h == o }

// Xor returns the byte-wise exclusive-or of h and o, the only other
// operation spec.md §6 allows on hashes.
func (h Hash) Xor(o Hash) Hash {
	var out Hash
	for i := range out {
		out[i] = h[i] ^ o[i]
	}
	return out
}

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// tag bytes distinguish encoded value kinds inside the hash stream so
// e.g. the int64 zero value and a zero-length string never collide.
const (
	tagNil byte = iota
	tagBool
	tagInt
	tagFloat
	tagString
	tagBytes
	tagSeq
	tagMap
	tagCallNode
	tagProjection
)

// encoder accumulates a canonical byte stream for an arbitrary structural
// value, descending into embedded *CallNode arguments by their own
// structural Hash rather than re-walking them (spec.md §4.3).
type encoder struct {
	buf []byte
}

func (e *encoder) writeTag(t byte)   { e.buf = append(e.buf, t) }
func (e *encoder) writeBytes(b []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
	e.buf = append(e.buf, lenBuf[:]...)
	e.buf = append(e.buf, b...)
}

func (e *encoder) encode(v any) error {
	switch val := v.(type) {
	case nil:
		e.writeTag(tagNil)
	case bool:
		e.writeTag(tagBool)
		if val {
			e.buf = append(e.buf, 1)
		} else {
			e.buf = append(e.buf, 0)
		}
	case int:
		e.encodeInt(int64(val))
	case int64:
		e.encodeInt(val)
	case float64:
		e.writeTag(tagFloat)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(val))
		e.buf = append(e.buf, b[:]...)
	case string:
		e.writeTag(tagString)
		e.writeBytes([]byte(val))
	case []byte:
		e.writeTag(tagBytes)
		e.writeBytes(val)
	case *CallNode:
		e.writeTag(tagCallNode)
		digest := val.Hash()
		e.buf = append(e.buf, digest[:]...)
	case *Projection:
		e.writeTag(tagProjection)
		digest := val.Node.Hash()
		e.buf = append(e.buf, digest[:]...)
		if val.ByShape {
			e.buf = append(e.buf, 1)
			e.encodeShape(val.Shape)
			e.encodeInt(int64(val.LeafPos))
		} else {
			e.buf = append(e.buf, 0)
			var lenBuf [8]byte
			binary.BigEndian.PutUint64(lenBuf[:], uint64(len(val.Path)))
			e.buf = append(e.buf, lenBuf[:]...)
			for _, i := range val.Path {
				e.encodeInt(int64(i))
			}
		}
	case []any:
		e.writeTag(tagSeq)
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(val)))
		e.buf = append(e.buf, lenBuf[:]...)
		for _, elem := range val {
			if err := e.encode(elem); err != nil {
				return err
			}
		}
	case map[string]any:
		e.writeTag(tagMap)
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(keys)))
		e.buf = append(e.buf, lenBuf[:]...)
		for _, k := range keys {
			e.writeBytes([]byte(k))
			if err := e.encode(val[k]); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("callnode: unhashable argument of type %T", v)
	}
	return nil
}

func (e *encoder) encodeShape(s astutil.Shape) {
	if s.Star {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
	e.encodeInt(int64(len(s.Children)))
	for _, c := range s.Children {
		e.encodeShape(c)
	}
}

func (e *encoder) encodeInt(v int64) {
	e.writeTag(tagInt)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	e.buf = append(e.buf, b[:]...)
}

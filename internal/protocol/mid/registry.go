// Package mid implements the pluggable, per-MID, per-revision codec
// registry: dispatching a raw payload to the leaf parser/serializer
// registered for a message's MID, with a raw pass-through fallback for
// unknown MIDs.
package mid

import (
	"fmt"
	"sync"

	"github.com/kulaginds/openprotocol/internal/protocol/message"
)

// ParseFunc decodes a raw payload for one MID/revision into a structured
// record.
type ParseFunc func(payload []byte, msg *message.Message) (any, error)

// SerializeFunc encodes msg's structured payload into raw bytes ready for
// the header serializer.
type SerializeFunc func(msg *message.Message) ([]byte, error)

// Codec is one leaf registration: a parser, a serializer, and the
// revisions it supports.
type Codec struct {
	Parse     ParseFunc
	Serialize SerializeFunc
	Revisions []int
}

// SupportedRevisions returns the revisions this codec handles.
func (c *Codec) SupportedRevisions() []int { return c.Revisions }

func (c *Codec) supports(revision int) bool {
	for _, r := range c.Revisions {
		if r == revision {
			return true
		}
	}
	return false
}

// revisionOrDefault applies the wire convention that a blank/zero revision
// means revision 1, matching the header layer's own default.
func revisionOrDefault(revision int) int {
	if revision == 0 {
		return 1
	}
	return revision
}

// Registry is a process-wide, read-mostly mapping from MID number to
// Codec. It is populated once at startup by the codecs package's init()
// registrations and never mutated afterward in normal operation, but
// Register is still synchronized so tests can build ad hoc registries.
type Registry struct {
	mu     sync.RWMutex
	codecs map[int]*Codec
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[int]*Codec)}
}

// defaultRegistry is the process-wide registry the codecs package
// populates via init(). Client code reaches it through Default; tests
// and embedders that want an isolated set of codecs can build their own
// with NewRegistry instead.
var defaultRegistry = NewRegistry()

// Default returns the process-wide Registry populated by every imported
// codec package's init() registrations.
func Default() *Registry { return defaultRegistry }

// Register adds or replaces the codec for mid.
func (r *Registry) Register(mid int, c *Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[mid] = c
}

// Lookup returns the codec registered for mid, if any.
func (r *Registry) Lookup(mid int) (*Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[mid]
	return c, ok
}

const (
	parseOp     = "mid.parse"
	serializeOp = "mid.serialize"
)

// Parse decodes msg's raw []byte Payload in place via the codec
// registered for msg.MID. When no codec is registered, the payload is
// left as raw bytes (the unknown-MID fallback).
func (r *Registry) Parse(msg *message.Message) error {
	payload, ok := msg.Payload.([]byte)
	if !ok {
		return message.NewError(parseOp, message.KindInvalidPayload)
	}

	codec, ok := r.Lookup(msg.MID)
	if !ok {
		return nil
	}
	if !codec.supports(revisionOrDefault(msg.Revision)) {
		return message.NewError(parseOp, message.KindUnsupportedRevision)
	}

	decoded, err := codec.Parse(payload, msg)
	if err != nil {
		return message.WrapError(parseOp, message.KindInvalidPayload, err)
	}
	msg.Payload = decoded
	return nil
}

// SerializeOptions controls the publish/subscribe and ack mid-rewrite
// conventions applied before dispatching to the registered codec.
type SerializeOptions struct {
	Subscribe   bool
	Unsubscribe bool
}

// Serialize encodes msg's structured Payload into raw bytes. When msg.IsAck
// is set, it rewrites msg.MID to MIDCommandAccepted and emits the original
// MID as a 4-digit payload instead of invoking the registered codec. When
// opts requests subscription, it rewrites msg.MID to MIDSubscribe or
// MIDUnsubscribe with the target MID as a 4-digit payload. Otherwise it
// dispatches to the registered codec, or passes any byte-like payload
// through unchanged when no codec is registered for msg.MID.
func (r *Registry) Serialize(msg *message.Message, opts SerializeOptions) ([]byte, error) {
	if msg.IsAck {
		payload := []byte(fmt.Sprintf("%04d", msg.MID))
		msg.MID = message.MIDCommandAccepted
		return payload, nil
	}

	if opts.Subscribe || opts.Unsubscribe {
		payload := []byte(fmt.Sprintf("%04d", msg.MID))
		if opts.Subscribe {
			msg.MID = message.MIDSubscribe
		} else {
			msg.MID = message.MIDUnsubscribe
		}
		return payload, nil
	}

	codec, ok := r.Lookup(msg.MID)
	if !ok {
		raw, ok := msg.PayloadBytes()
		if !ok {
			return nil, message.NewError(serializeOp, message.KindUnknownMid)
		}
		return raw, nil
	}
	if !codec.supports(revisionOrDefault(msg.Revision)) {
		return nil, message.NewError(serializeOp, message.KindUnsupportedRevision)
	}

	return codec.Serialize(msg)
}

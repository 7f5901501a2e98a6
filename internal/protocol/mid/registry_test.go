package mid_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"
)

type greeting struct{ Name string }

func newTestRegistry() *mid.Registry {
	r := mid.NewRegistry()
	r.Register(100, &mid.Codec{
		Revisions: []int{1, 2},
		Parse: func(payload []byte, _ *message.Message) (any, error) {
			return &greeting{Name: string(payload)}, nil
		},
		Serialize: func(msg *message.Message) ([]byte, error) {
			g := msg.Payload.(*greeting)
			return []byte(g.Name), nil
		},
	})
	return r
}

func TestRegistryParseKnownMid(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 100, Revision: 1, Payload: []byte("hi")}

	err := r.Parse(msg)
	require.NoError(t, err)
	require.Equal(t, &greeting{Name: "hi"}, msg.Payload)
}

func TestRegistryParseDefaultsBlankRevisionToOne(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 100, Payload: []byte("hi")}

	err := r.Parse(msg)
	require.NoError(t, err)
	require.Equal(t, &greeting{Name: "hi"}, msg.Payload)
}

func TestRegistrySerializeDefaultsBlankRevisionToOne(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 100, Payload: &greeting{Name: "hi"}}

	payload, err := r.Serialize(msg, mid.SerializeOptions{})
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), payload)
}

func TestRegistryParseUnsupportedRevision(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 100, Revision: 9, Payload: []byte("hi")}

	err := r.Parse(msg)
	require.True(t, errors.Is(err, message.ErrUnsupportedRevision))
}

func TestRegistryParseUnknownMidPassesThrough(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 999, Revision: 1, Payload: []byte("raw")}

	err := r.Parse(msg)
	require.NoError(t, err)
	require.Equal(t, []byte("raw"), msg.Payload)
}

func TestRegistrySerializeKnownMid(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 100, Revision: 1, Payload: &greeting{Name: "hi"}}

	payload, err := r.Serialize(msg, mid.SerializeOptions{})
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), payload)
}

func TestRegistrySerializeUnknownMidPassesThroughBytes(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 999, Revision: 1, Payload: []byte("raw")}

	payload, err := r.Serialize(msg, mid.SerializeOptions{})
	require.NoError(t, err)
	require.Equal(t, []byte("raw"), payload)
}

func TestRegistrySerializeUnknownMidRejectsStructPayload(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 999, Revision: 1, Payload: &greeting{Name: "hi"}}

	_, err := r.Serialize(msg, mid.SerializeOptions{})
	require.True(t, errors.Is(err, message.ErrUnknownMid))
}

func TestRegistrySerializeAckRewritesMid(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 61, Revision: 1, IsAck: true}

	payload, err := r.Serialize(msg, mid.SerializeOptions{})
	require.NoError(t, err)
	require.Equal(t, message.MIDCommandAccepted, msg.MID)
	require.Equal(t, []byte("0061"), payload)
}

func TestRegistrySerializeSubscribeRewritesMid(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 61, Revision: 1}

	payload, err := r.Serialize(msg, mid.SerializeOptions{Subscribe: true})
	require.NoError(t, err)
	require.Equal(t, message.MIDSubscribe, msg.MID)
	require.Equal(t, []byte("0061"), payload)
}

func TestRegistrySerializeUnsubscribeRewritesMid(t *testing.T) {
	r := newTestRegistry()
	msg := &message.Message{MID: 61, Revision: 1}

	payload, err := r.Serialize(msg, mid.SerializeOptions{Unsubscribe: true})
	require.NoError(t, err)
	require.Equal(t, message.MIDUnsubscribe, msg.MID)
	require.Equal(t, []byte("0061"), payload)
}

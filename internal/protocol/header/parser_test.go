package header

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kulaginds/openprotocol/internal/protocol/message"
)

func frame(t *testing.T, mid int, revision string, payload string, terminator bool) []byte {
	t.Helper()
	length := message.HeaderLen + len(payload)
	s := fmt.Sprintf("%04d%04d%s000000000%s", length, mid, revision, payload)
	b := []byte(s)
	if terminator {
		b = append(b, 0x00)
	}
	return b
}

func TestParserSingleFrame(t *testing.T) {
	f := frame(t, 2, "001", "hello world", true)

	p := NewParser(false)
	msgs, err := p.Feed(f)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, 2, msgs[0].MID)
	require.Equal(t, 1, msgs[0].Revision)
	require.Equal(t, []byte("hello world"), msgs[0].Payload)
}

func TestParserChunkBoundaryIdempotence(t *testing.T) {
	f1 := frame(t, 2, "001", "first message", true)
	f2 := frame(t, 3, "002", "second message payload", true)
	whole := append(append([]byte{}, f1...), f2...)

	// Deliver as a single chunk.
	p1 := NewParser(false)
	oneShot, err := p1.Feed(whole)
	require.NoError(t, err)
	require.Len(t, oneShot, 2)

	// Deliver byte by byte.
	p2 := NewParser(false)
	var chunked []*message.Message
	for i := range whole {
		msgs, err := p2.Feed(whole[i : i+1])
		require.NoError(t, err)
		chunked = append(chunked, msgs...)
	}
	require.Len(t, chunked, 2)

	for i := range oneShot {
		require.Equal(t, oneShot[i].MID, chunked[i].MID)
		require.Equal(t, oneShot[i].Payload, chunked[i].Payload)
	}

	// Deliver split mid-header and mid-payload.
	p3 := NewParser(false)
	splitAt := []int{2, 9, 15, len(f1) + 3, len(f1) + 12}
	var cursor int
	var weird []*message.Message
	for _, cut := range splitAt {
		if cut <= cursor || cut > len(whole) {
			continue
		}
		msgs, err := p3.Feed(whole[cursor:cut])
		require.NoError(t, err)
		weird = append(weird, msgs...)
		cursor = cut
	}
	msgs, err := p3.Feed(whole[cursor:])
	require.NoError(t, err)
	weird = append(weird, msgs...)
	require.Len(t, weird, 2)
}

func TestParserRevisionDefault(t *testing.T) {
	f := frame(t, 2, "   ", "x", true)
	p := NewParser(false)
	msgs, err := p.Feed(f)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, 1, msgs[0].Revision)
}

func TestParserInvalidLength(t *testing.T) {
	p := NewParser(false)
	_, err := p.Feed([]byte("abcd"))
	require.Error(t, err)
	require.True(t, errors.Is(err, message.ErrInvalidLength))
}

func TestParserInvalidMid(t *testing.T) {
	p := NewParser(false)
	_, err := p.Feed([]byte("0021abcd"))
	require.Error(t, err)
	require.True(t, errors.Is(err, message.ErrInvalidMid))
}

func TestParserMissingTerminator(t *testing.T) {
	f := frame(t, 2, "001", "x", false)
	p := NewParser(false)
	_, err := p.Feed(f)
	require.Error(t, err)
	require.True(t, errors.Is(err, message.ErrInvalidTerminator))
}

func TestParserMID900WaivesTerminator(t *testing.T) {
	f := frame(t, 900, "001", "x", false)
	p := NewParser(false)
	msgs, err := p.Feed(f)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, 900, msgs[0].MID)
}

func TestParserRawDataMode(t *testing.T) {
	f := frame(t, 2, "001", "payload", true)
	p := NewParser(true)
	msgs, err := p.Feed(f)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, f, msgs[0].Raw)
}

func TestParserAwaitsMoreData(t *testing.T) {
	p := NewParser(false)
	msgs, err := p.Feed([]byte("002"))
	require.NoError(t, err)
	require.Nil(t, msgs)
}

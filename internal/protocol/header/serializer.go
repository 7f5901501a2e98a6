package header

import (
	"fmt"

	"github.com/kulaginds/openprotocol/internal/protocol/message"
)

const serializeOp = "header.serialize"

// Serialize encodes msg with the given already-MID-encoded payload into
// framed wire bytes. It is a pure function: no I/O, no retained state. The
// caller (the Link Layer) is responsible for splitting any payload larger
// than message.MaxPayloadPerPart before calling Serialize, and for
// stamping SequenceNumber/MessageParts/MessageNumber appropriately.
func Serialize(msg *message.Message, payload []byte) ([]byte, error) {
	revision := msg.Revision
	if revision == 0 {
		revision = 1
	}

	if msg.MID < message.MinMID || msg.MID > message.MaxMID {
		return nil, message.NewError(serializeOp, message.KindInvalidMid)
	}
	if revision < message.MinRevision || revision > message.MaxRevision {
		return nil, message.NewError(serializeOp, message.KindInvalidRevision)
	}
	if msg.StationID < message.MinStationID || msg.StationID > message.MaxStationID {
		return nil, message.NewError(serializeOp, message.KindInvalidStationID)
	}
	if msg.SpindleID < message.MinSpindleID || msg.SpindleID > message.MaxSpindleID {
		return nil, message.NewError(serializeOp, message.KindInvalidSpindleID)
	}
	if msg.SequenceNumber < message.MinSequenceNumber || msg.SequenceNumber > message.MaxSequenceNumber {
		return nil, message.NewError(serializeOp, message.KindInvalidSequenceNumber)
	}
	if msg.MessageParts < message.MinMessageParts || msg.MessageParts > message.MaxMessageParts {
		return nil, message.NewError(serializeOp, message.KindInvalidMessageParts)
	}
	if msg.MessageNumber < message.MinMessageNumber || msg.MessageNumber > message.MaxMessageNumber {
		return nil, message.NewError(serializeOp, message.KindInvalidMessageNumber)
	}
	if len(payload) > message.MaxPayloadPerPart {
		return nil, message.NewError(serializeOp, message.KindTooLarge)
	}

	length := message.HeaderLen + len(payload)
	if length > message.MaxFrameLength {
		return nil, message.NewError(serializeOp, message.KindTooLarge)
	}

	requireTerminator := !waivesTerminator(msg.MID)
	size := length
	if requireTerminator {
		size++
	}

	out := make([]byte, 0, size)
	out = append(out, []byte(fmt.Sprintf("%04d", length))...)
	out = append(out, []byte(fmt.Sprintf("%04d", msg.MID))...)
	out = append(out, []byte(fmt.Sprintf("%03d", revision))...)
	out = append(out, []byte(fmt.Sprintf("%d", boolToInt(msg.NoAck)))...)
	out = append(out, []byte(fmt.Sprintf("%02d", msg.StationID))...)
	out = append(out, []byte(fmt.Sprintf("%02d", msg.SpindleID))...)
	out = append(out, []byte(fmt.Sprintf("%02d", msg.SequenceNumber))...)
	out = append(out, []byte(fmt.Sprintf("%d", msg.MessageParts))...)
	out = append(out, []byte(fmt.Sprintf("%d", msg.MessageNumber))...)
	out = append(out, payload...)
	if requireTerminator {
		out = append(out, 0x00)
	}

	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// PadString right-pads s with spaces to width, truncating if s is already
// longer, as a fixed-width string field is written on the wire.
func PadString(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + spaces(width-len(s))
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

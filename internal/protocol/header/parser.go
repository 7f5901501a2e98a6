// Package header implements the Open Protocol framing layer: turning an
// arbitrary-boundary byte stream into discrete Message records (Parser) and
// a Message back into framed bytes (Serializer). Neither side does I/O or
// retains any state beyond the parser's carry buffer.
package header

import (
	"github.com/kulaginds/openprotocol/internal/protocol/message"
)

const op = "header.parse"

// waivesTerminator reports whether mid is one of the two MIDs whose frames
// may omit the trailing NUL terminator.
func waivesTerminator(mid int) bool {
	return mid == 900 || mid == 901
}

// Parser reassembles framed messages out of an arbitrary-boundary byte
// stream. It is not safe for concurrent use; the Link Layer drives it from
// a single goroutine.
type Parser struct {
	carry   []byte
	rawData bool
}

// NewParser returns a Parser. When rawData is true, every emitted Message
// carries a copy of its original framed bytes in Raw.
func NewParser(rawData bool) *Parser {
	return &Parser{rawData: rawData}
}

// Feed appends chunk to the carry buffer and returns every Message that can
// be fully parsed out of it. It never emits a partial Message: on a short
// read it stashes the remainder and returns what it has, waiting for more
// bytes on the next call. A parse error is returned immediately and the
// carry buffer is left untouched, since the byte stream is no longer
// trustworthy past that point.
func (p *Parser) Feed(chunk []byte) ([]*message.Message, error) {
	if len(chunk) > 0 {
		p.carry = append(p.carry, chunk...)
	}

	var out []*message.Message
	for {
		msg, consumed, err := p.parseOne(p.carry)
		if err != nil {
			return out, err
		}
		if msg == nil {
			break
		}
		out = append(out, msg)
		p.carry = p.carry[consumed:]
	}
	return out, nil
}

// parseOne attempts to parse a single framed message from the front of buf.
// It returns (nil, 0, nil) when buf does not yet hold enough bytes.
func (p *Parser) parseOne(buf []byte) (*message.Message, int, error) {
	if len(buf) < 4 {
		return nil, 0, nil
	}

	length, err := parseDigits(buf[0:4], 1, message.MaxFrameLength)
	if err != nil {
		return nil, 0, message.WrapError(op, message.KindInvalidLength, err)
	}

	if len(buf) < 8 {
		return nil, 0, nil
	}

	mid, err := parseDigits(buf[4:8], message.MinMID, message.MaxMID)
	if err != nil {
		return nil, 0, message.WrapError(op, message.KindInvalidMid, err)
	}

	requireTerminator := !waivesTerminator(mid)
	required := length
	if requireTerminator {
		required++
	}
	if len(buf) < required {
		return nil, 0, nil
	}

	if length < message.HeaderLen {
		return nil, 0, message.NewError(op, message.KindInvalidLength)
	}

	revision, err := parseFieldOrDefault(buf[8:11], 1, message.MinRevision, message.MaxRevision)
	if err != nil {
		return nil, 0, message.WrapError(op, message.KindInvalidRevision, err)
	}

	noAckInt, err := parseFieldOrDefault(buf[11:12], 0, 0, 1)
	if err != nil {
		return nil, 0, message.WrapError(op, message.KindInvalidNoAck, err)
	}

	stationID, err := parseFieldOrDefault(buf[12:14], 0, message.MinStationID, message.MaxStationID)
	if err != nil {
		return nil, 0, message.WrapError(op, message.KindInvalidStationID, err)
	}

	spindleID, err := parseFieldOrDefault(buf[14:16], 0, message.MinSpindleID, message.MaxSpindleID)
	if err != nil {
		return nil, 0, message.WrapError(op, message.KindInvalidSpindleID, err)
	}

	sequenceNumber, err := parseFieldOrDefault(buf[16:18], 0, message.MinSequenceNumber, message.MaxSequenceNumber)
	if err != nil {
		return nil, 0, message.WrapError(op, message.KindInvalidSequenceNumber, err)
	}

	messageParts, err := parseFieldOrDefault(buf[18:19], 0, message.MinMessageParts, message.MaxMessageParts)
	if err != nil {
		return nil, 0, message.WrapError(op, message.KindInvalidMessageParts, err)
	}

	messageNumber, err := parseFieldOrDefault(buf[19:20], 0, message.MinMessageNumber, message.MaxMessageNumber)
	if err != nil {
		return nil, 0, message.WrapError(op, message.KindInvalidMessageNumber, err)
	}

	payload := make([]byte, length-message.HeaderLen)
	copy(payload, buf[message.HeaderLen:length])

	consumed := length
	if requireTerminator {
		if buf[length] != 0x00 {
			return nil, 0, message.NewError(op, message.KindInvalidTerminator)
		}
		consumed = length + 1
	}

	msg := &message.Message{
		MID:            mid,
		Revision:       revision,
		NoAck:          noAckInt == 1,
		StationID:      stationID,
		SpindleID:      spindleID,
		SequenceNumber: sequenceNumber,
		MessageParts:   messageParts,
		MessageNumber:  messageNumber,
		Payload:        payload,
	}
	if p.rawData {
		raw := make([]byte, consumed)
		copy(raw, buf[:consumed])
		msg.Raw = raw
	}

	return msg, consumed, nil
}

// parseDigits parses an all-digit field with no space-default substitution
// (used for length and MID, which are always mandatory).
func parseDigits(raw []byte, min, max int) (int, error) {
	n := 0
	for _, b := range raw {
		if b < '0' || b > '9' {
			return 0, errNotDigits
		}
		n = n*10 + int(b-'0')
	}
	if n < min || n > max {
		return 0, errOutOfRange
	}
	return n, nil
}

// parseFieldOrDefault parses a fixed-width numeric field, substituting def
// when the field is entirely ASCII spaces.
func parseFieldOrDefault(raw []byte, def, min, max int) (int, error) {
	if allSpaces(raw) {
		return def, nil
	}
	return parseDigits(raw, min, max)
}

func allSpaces(raw []byte) bool {
	for _, b := range raw {
		if b != ' ' {
			return false
		}
	}
	return true
}

package linklayer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kulaginds/openprotocol/internal/protocol/header"
	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"
)

// pendingWrite is the single outstanding, unacknowledged outbound message.
// Only one may exist at a time: the driver does not read a new write
// request off writeReqs while pending is non-nil.
type pendingWrite struct {
	originalMID int
	seq         int
	frames      [][]byte
	resends     int
	done        chan error
}

// partialState accumulates a multi-part message's payload across frames.
type partialState struct {
	parts    int
	nextPart int
	payload  []byte
}

type deliveredKey struct {
	mid int
	seq int
}

// NACK error codes. The protocol's documented NACK payload carries the
// acknowledged MID plus a 2-digit error code; spec.md leaves the exact
// MID 900/901-style binary layouts as an open question, so this is one
// self-consistent choice, not a vendor-fidelity claim.
const (
	nackInvalidSequenceNumber      = 1
	nackInconsistencyMessageNumber = 2
)

// run is the single cooperative driver goroutine: one select loop over
// inbound chunks, write requests, the retransmit timer, activation
// toggles, and destruction. It is the idiomatic rendering of the
// single-threaded pipeline a non-coroutine language would need a state
// machine for.
func (l *LinkLayer) run() {
	defer close(l.done)

	var (
		active          bool
		pending         *pendingWrite
		retransmitTimer *time.Timer
		retransmitC     <-chan time.Time
		nextOutSeq      int
		expectedPeerSeq int
		haveDelivered   bool
		lastDelivered   deliveredKey
		part            *partialState
	)

	stopTimer := func() {
		if retransmitTimer != nil {
			retransmitTimer.Stop()
			retransmitTimer = nil
			retransmitC = nil
		}
	}
	armTimer := func() {
		stopTimer()
		retransmitTimer = time.NewTimer(l.opts.Timeout)
		retransmitC = retransmitTimer.C
	}
	completePending := func(err error) {
		if pending == nil {
			return
		}
		stopTimer()
		done := pending.done
		pending = nil
		done <- err
	}

	for {
		// Disable the write-request case while a write is outstanding:
		// senders simply block on the channel send until it clears,
		// enforcing the single-pending-write model without a queue.
		var writeReqs chan *writeRequest
		if pending == nil {
			writeReqs = l.writeReqs
		}

		select {
		case <-l.destroyC:
			stopTimer()
			return

		case v := <-l.activateC:
			active = v
			if !active {
				nextOutSeq = 0
				expectedPeerSeq = 0
			}

		case req := <-writeReqs:
			l.handleWrite(req, &active, &nextOutSeq, &pending, armTimer)

		case <-retransmitC:
			l.handleRetransmitFire(&pending, armTimer, completePending)

		case err := <-l.readErrs:
			l.pushErr(err)

		case chunk := <-l.inbound:
			msgs, ferr := l.parser.Feed(chunk)
			for _, m := range msgs {
				l.handleInbound(m, &active, &nextOutSeq, &expectedPeerSeq, &haveDelivered, &lastDelivered, &part, &pending, completePending)
			}
			if ferr != nil {
				part = nil
				l.pushErr(ferr)
			}
		}
	}
}

func (l *LinkLayer) pushErr(err error) {
	select {
	case l.errs <- err:
	case <-l.destroyC:
	}
}

func (l *LinkLayer) pushSerializeErr(err error) {
	select {
	case l.serializeErrs <- err:
	case <-l.destroyC:
	}
}

func (l *LinkLayer) deliver(m *message.Message) {
	select {
	case l.events <- m:
	case <-l.destroyC:
	}
}

// handleWrite serializes and sends req.msg. Ack frames (IsAck, or an
// explicit POSITIVE_ACK/NEGATIVE_ACK MID) fire their completion
// unconditionally with no timer armed. Non-ack writes in Inactive mode
// send with a zero sequence number and also complete unconditionally,
// since no acks are expected. Non-ack writes in Active mode are split,
// stamped with a fresh sequence number, retained as pending, and timed.
func (l *LinkLayer) handleWrite(req *writeRequest, active *bool, nextOutSeq *int, pending **pendingWrite, armTimer func()) {
	msg := req.msg

	payload, err := l.registry.Serialize(msg, mid.SerializeOptions{Subscribe: msg.Subscribe, Unsubscribe: msg.Unsubscribe})
	if err != nil {
		l.pushSerializeErr(err)
		req.done <- err
		return
	}

	isAckFrame := msg.IsAck || msg.IsLinkLayerAck()

	if isAckFrame || !*active {
		if !isAckFrame {
			msg.SequenceNumber = 0
		}
		frame, ferr := header.Serialize(msg, payload)
		if ferr != nil {
			l.pushSerializeErr(ferr)
			req.done <- ferr
			return
		}
		if _, werr := l.conn.Write(frame); werr != nil {
			req.done <- werr
			return
		}
		req.done <- nil
		return
	}

	parts, terr := splitPayload(payload)
	if terr != nil {
		l.pushSerializeErr(terr)
		req.done <- terr
		return
	}

	seq := nextOutboundSeq(*nextOutSeq)
	msg.SequenceNumber = seq

	if len(parts) > 1 {
		msg.MessageParts = len(parts)
	}

	frames := make([][]byte, len(parts))
	for i, p := range parts {
		partMsg := *msg
		if len(parts) > 1 {
			partMsg.MessageNumber = i + 1
		}
		frame, ferr := header.Serialize(&partMsg, p)
		if ferr != nil {
			l.pushSerializeErr(ferr)
			req.done <- ferr
			return
		}
		frames[i] = frame
	}

	*nextOutSeq = seq

	for _, frame := range frames {
		if _, werr := l.conn.Write(frame); werr != nil {
			req.done <- werr
			return
		}
	}

	*pending = &pendingWrite{originalMID: msg.MID, seq: seq, frames: frames, done: req.done}
	armTimer()
}

func (l *LinkLayer) handleRetransmitFire(pending **pendingWrite, armTimer func(), completePending func(error)) {
	p := *pending
	if p == nil {
		return
	}

	if p.resends < l.opts.RetryLimit {
		p.resends++
		l.log.Debug("retransmitting mid=%d seq=%d attempt=%d/%d", p.originalMID, p.seq, p.resends, l.opts.RetryLimit)
		for _, frame := range p.frames {
			if _, err := l.conn.Write(frame); err != nil {
				completePending(err)
				return
			}
		}
		armTimer()
		return
	}

	l.log.Warn("write timed out mid=%d seq=%d after %d retries", p.originalMID, p.seq, p.resends)
	completePending(message.NewError("linklayer.write", message.KindTimeout))
}

// handleInbound applies, in order, the duplicate check, multi-part
// reassembly, sequencing validation, and dispatch rules from spec.md
// §4.3 to one framed Message off the Header Parser.
func (l *LinkLayer) handleInbound(
	m *message.Message,
	active *bool,
	nextOutSeq *int,
	expectedPeerSeq *int,
	haveDelivered *bool,
	lastDelivered *deliveredKey,
	part **partialState,
	pending **pendingWrite,
	completePending func(error),
) {
	key := deliveredKey{mid: m.MID, seq: m.SequenceNumber}
	if *haveDelivered && key == *lastDelivered {
		// A duplicate of the last delivered message, most likely because
		// our ack for it was lost in transit. Rewind the expected-peer
		// counter so a fresh frame still matches, and resend the ack so
		// the peer can stop retransmitting.
		l.log.Debug("duplicate frame mid=%d seq=%d, resending ack", m.MID, m.SequenceNumber)
		*expectedPeerSeq = prevSeq(*expectedPeerSeq)
		if *active {
			_ = l.sendPositiveAck(m.SequenceNumber, m.MID)
		}
		return
	}

	if m.MessageParts > 0 {
		expectedPart := 1
		if *part != nil {
			expectedPart = (*part).nextPart
		}
		if m.MessageNumber != expectedPart {
			*part = nil
			if *active {
				_ = l.sendNack(m.SequenceNumber, m.MID, nackInconsistencyMessageNumber)
			}
			l.pushErr(message.NewError("linklayer.receive", message.KindInconsistencyMessageNumber))
			return
		}

		if *part == nil {
			*part = &partialState{parts: m.MessageParts}
		}
		payload, _ := m.PayloadBytes()
		(*part).payload = append((*part).payload, payload...)
		(*part).nextPart = m.MessageNumber + 1

		if m.MessageNumber < m.MessageParts {
			return
		}

		m.Payload = (*part).payload
		*part = nil
	}

	if *active && m.SequenceNumber != 0 {
		if m.IsLinkLayerAck() {
			if m.SequenceNumber != nextSeq(*nextOutSeq) {
				l.pushErr(message.NewError("linklayer.receive", message.KindAckMismatch))
				return
			}
		} else {
			expected := nextSeq(*expectedPeerSeq)
			if m.SequenceNumber != expected {
				_ = l.sendNack(m.SequenceNumber, m.MID, nackInvalidSequenceNumber)
				l.pushErr(message.NewError("linklayer.receive", message.KindInvalidSequenceNumber))
				return
			}
			*expectedPeerSeq = expected
			_ = l.sendPositiveAck(m.SequenceNumber, m.MID)
		}
	}

	*haveDelivered = true
	*lastDelivered = key

	if m.IsLinkLayerAck() {
		p := *pending
		if p == nil {
			return
		}

		var err error
		acked, ok := ackedMID(m)
		switch {
		case m.MID == message.MIDNegativeAck:
			err = message.NewError("linklayer.write", message.KindAckMismatch)
		case !ok || acked != p.originalMID:
			err = message.NewError("linklayer.write", message.KindAckMismatch)
		case m.SequenceNumber != nextSeq(p.seq):
			err = message.NewError("linklayer.write", message.KindAckMismatch)
		}
		if err != nil {
			l.log.Debug("ack mismatch for pending mid=%d seq=%d: %v", p.originalMID, p.seq, err)
		}
		completePending(err)
		return
	}

	if !l.disableMidParsing(m.MID) {
		if perr := l.registry.Parse(m); perr != nil {
			l.pushErr(perr)
			return
		}
	}

	l.deliver(m)
}

func (l *LinkLayer) disableMidParsing(mid int) bool {
	for _, m := range l.opts.DisableMidParsing {
		if m == mid {
			return true
		}
	}
	return false
}

func ackedMID(m *message.Message) (int, bool) {
	payload, ok := m.PayloadBytes()
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (l *LinkLayer) sendPositiveAck(peerSeq, peerMID int) error {
	payload := []byte(fmt.Sprintf("%04d", peerMID))
	ack := &message.Message{MID: message.MIDPositiveAck, Revision: 1, SequenceNumber: nextSeq(peerSeq)}
	frame, err := header.Serialize(ack, payload)
	if err != nil {
		return err
	}
	_, err = l.conn.Write(frame)
	return err
}

func (l *LinkLayer) sendNack(peerSeq, peerMID, code int) error {
	payload := []byte(fmt.Sprintf("%04d%02d", peerMID, code))
	nack := &message.Message{MID: message.MIDNegativeAck, Revision: 1, SequenceNumber: nextSeq(peerSeq)}
	frame, err := header.Serialize(nack, payload)
	if err != nil {
		return err
	}
	_, err = l.conn.Write(frame)
	return err
}

// nextSeq advances a sequence number the way an ACK reply and the
// expected-peer-sequence counter do: wrapping 99 to 0.
func nextSeq(seq int) int {
	if seq >= 99 {
		return 0
	}
	return seq + 1
}

// prevSeq is nextSeq's inverse, used to rewind the expected-peer-sequence
// counter on a detected duplicate.
func prevSeq(seq int) int {
	if seq <= 0 {
		return 99
	}
	return seq - 1
}

// nextOutboundSeq advances an outbound write's own sequence number,
// wrapping 99 to 1 (outbound sequence numbers are never 0).
func nextOutboundSeq(seq int) int {
	if seq >= 99 {
		return 1
	}
	return seq + 1
}

// splitPayload divides payload into consecutive parts of at most
// message.MaxPayloadPerPart bytes, failing with TooLarge if the result
// would need more than message.MaxParts parts.
func splitPayload(payload []byte) ([][]byte, error) {
	if len(payload) == 0 {
		return [][]byte{payload}, nil
	}

	n := (len(payload) + message.MaxPayloadPerPart - 1) / message.MaxPayloadPerPart
	if n > message.MaxParts {
		return nil, message.NewError("linklayer.write", message.KindTooLarge)
	}

	parts := make([][]byte, 0, n)
	for i := 0; i < len(payload); i += message.MaxPayloadPerPart {
		end := i + message.MaxPayloadPerPart
		if end > len(payload) {
			end = len(payload)
		}
		parts = append(parts, payload[i:end])
	}
	return parts, nil
}

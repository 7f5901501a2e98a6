package message

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure reported by Error, mirroring the
// error kinds the protocol distinguishes in its design (InvalidLength,
// AckMismatch, Timeout, and so on) so callers can branch on errors.Is
// against the Err* sentinels below instead of parsing strings.
type Kind string

const (
	KindInvalidLength              Kind = "invalid_length"
	KindInvalidMid                 Kind = "invalid_mid"
	KindInvalidRevision            Kind = "invalid_revision"
	KindInvalidNoAck               Kind = "invalid_no_ack"
	KindInvalidStationID           Kind = "invalid_station_id"
	KindInvalidSpindleID           Kind = "invalid_spindle_id"
	KindInvalidSequenceNumber      Kind = "invalid_sequence_number"
	KindInvalidMessageParts        Kind = "invalid_message_parts"
	KindInvalidMessageNumber       Kind = "invalid_message_number"
	KindInvalidTerminator          Kind = "invalid_terminator"
	KindInvalidPayload             Kind = "invalid_payload"
	KindTooLarge                   Kind = "too_large"
	KindUnsupportedRevision        Kind = "unsupported_revision"
	KindInconsistencyMessageNumber Kind = "inconsistency_message_number"
	KindAckMismatch                Kind = "ack_mismatch"
	KindTimeout                    Kind = "timeout"
	KindUnknownMid                 Kind = "unknown_mid"
)

// Error is the error type surfaced by every pipeline stage. Op names the
// stage/operation that failed ("header.parse", "linklayer.write", ...);
// Kind classifies the failure; Err, when set, is the underlying cause.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("openprotocol: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("openprotocol: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, &Error{Kind: K}) match any *Error of the same
// Kind regardless of Op or wrapped cause, so sentinels below can be
// compared directly.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// NewError builds an *Error with no wrapped cause.
func NewError(op string, kind Kind) *Error {
	return &Error{Op: op, Kind: kind}
}

// WrapError builds an *Error wrapping a lower-level cause.
func WrapError(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Sentinels for errors.Is comparisons, e.g. errors.Is(err, message.ErrTimeout).
var (
	ErrInvalidLength              = &Error{Kind: KindInvalidLength}
	ErrInvalidMid                 = &Error{Kind: KindInvalidMid}
	ErrInvalidRevision            = &Error{Kind: KindInvalidRevision}
	ErrInvalidNoAck               = &Error{Kind: KindInvalidNoAck}
	ErrInvalidStationID           = &Error{Kind: KindInvalidStationID}
	ErrInvalidSpindleID           = &Error{Kind: KindInvalidSpindleID}
	ErrInvalidSequenceNumber      = &Error{Kind: KindInvalidSequenceNumber}
	ErrInvalidMessageParts        = &Error{Kind: KindInvalidMessageParts}
	ErrInvalidMessageNumber       = &Error{Kind: KindInvalidMessageNumber}
	ErrInvalidTerminator          = &Error{Kind: KindInvalidTerminator}
	ErrInvalidPayload             = &Error{Kind: KindInvalidPayload}
	ErrTooLarge                   = &Error{Kind: KindTooLarge}
	ErrUnsupportedRevision        = &Error{Kind: KindUnsupportedRevision}
	ErrInconsistencyMessageNumber = &Error{Kind: KindInconsistencyMessageNumber}
	ErrAckMismatch                = &Error{Kind: KindAckMismatch}
	ErrTimeout                    = &Error{Kind: KindTimeout}
	ErrUnknownMid                 = &Error{Kind: KindUnknownMid}
)

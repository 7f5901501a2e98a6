// Package message defines the in-memory representation of an Open Protocol
// message and the wire-format constants shared by the header, link layer,
// and MID codec packages.
package message

// Field width and range limits from the Open Protocol header (MS-style
// fixed-width ASCII framing used by tightening controllers).
const (
	MinMID = 1
	MaxMID = 9999

	MinRevision = 1
	MaxRevision = 999

	MinStationID = 0
	MaxStationID = 99

	MinSpindleID = 0
	MaxSpindleID = 99

	MinSequenceNumber = 0
	MaxSequenceNumber = 99

	MinMessageParts = 0
	MaxMessageParts = 9

	MinMessageNumber = 0
	MaxMessageNumber = 9

	// HeaderLen is the fixed 20-byte ASCII header preceding every payload.
	HeaderLen = 20

	// MaxPayloadPerPart is the maximum payload bytes a single framed
	// message may carry before the Link Layer must split it.
	MaxPayloadPerPart = 9979

	// MaxParts is the maximum number of parts a multi-part message may be
	// split into; a caller payload requiring more fails with TooLarge.
	MaxParts = 9

	// MaxFrameLength is the largest value the 4-digit length field can hold.
	MaxFrameLength = 9999
)

// Reserved MIDs with protocol-level meaning.
const (
	MIDCommandAccepted = 5
	MIDSubscribe       = 8
	MIDUnsubscribe     = 9
	MIDPositiveAck     = 9997
	MIDNegativeAck     = 9998
)

// Message is the in-memory record shared by every pipeline stage. Payload
// holds a raw []byte on the wire boundary, or a MID-specific decoded record
// once it has passed through the MID registry.
type Message struct {
	MID            int
	Revision       int
	NoAck          bool
	StationID      int
	SpindleID      int
	SequenceNumber int
	MessageParts   int
	MessageNumber  int
	Payload        any

	// IsAck marks an application-level ack reply; the Link Layer will not
	// demand its own ack for it.
	IsAck bool

	// Subscribe and Unsubscribe request the MID registry's publish/
	// subscribe serialize rewrite (mid -> 8 or 9, target mid as payload).
	Subscribe   bool
	Unsubscribe bool

	// Raw holds the original framed bytes, populated only when raw-data
	// mode is enabled.
	Raw []byte
}

// IsLinkLayerAck reports whether m is one of the Link Layer's own ack MIDs,
// which the Link Layer consumes directly rather than routing to the MID
// registry.
func (m *Message) IsLinkLayerAck() bool {
	return m.MID == MIDPositiveAck || m.MID == MIDNegativeAck
}

// PayloadBytes returns Payload as a byte slice, coercing a string payload.
// It is used by the MID registry's unknown-MID pass-through and by the
// Link Layer when it reads ack and multi-part payloads.
func (m *Message) PayloadBytes() ([]byte, bool) {
	switch p := m.Payload.(type) {
	case []byte:
		return p, true
	case string:
		return []byte(p), true
	case nil:
		return nil, true
	default:
		return nil, false
	}
}

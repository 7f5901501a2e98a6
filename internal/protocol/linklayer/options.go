package linklayer

import "time"

// Options configures a Link Layer instance.
type Options struct {
	// Timeout is how long a non-ack write waits for its acknowledgment
	// before the Link Layer retries or, after RetryLimit attempts, fails
	// the write with message.ErrTimeout.
	Timeout time.Duration

	// RetryLimit is how many times an unacknowledged write is
	// retransmitted before it is abandoned.
	RetryLimit int

	// RawData requests that every inbound Message retain a copy of its
	// original framed bytes in Message.Raw.
	RawData bool

	// DisableMidParsing lists MIDs for which the payload is delivered as
	// raw bytes, bypassing the MID registry entirely.
	DisableMidParsing []int
}

// DefaultTimeout and DefaultRetryLimit match the values the controller
// side of the protocol assumes when a client doesn't negotiate otherwise.
const (
	DefaultTimeout    = 3000 * time.Millisecond
	DefaultRetryLimit = 3
)

// WithDefaults returns a copy of o with zero-valued fields replaced by
// their defaults.
func (o Options) WithDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RetryLimit <= 0 {
		o.RetryLimit = DefaultRetryLimit
	}
	return o
}

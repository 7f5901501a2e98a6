package codecs

import (
	"fmt"

	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"
	"github.com/kulaginds/openprotocol/internal/protocol/mid/fields"
)

// CommandAccepted is the decoded payload of MID 0005: the registry's own
// ack rewrite carries the acknowledged MID as a 4-digit number. It is
// registered here so Parse resolves it to a typed value instead of
// falling back to raw bytes.
type CommandAccepted struct {
	AcknowledgedMID int
}

// SubscribeRequest is the decoded payload of MID 0008/0009: the
// subscribe/unsubscribe rewrite carries the target MID as a 4-digit
// number.
type SubscribeRequest struct {
	TargetMID int
}

func parseTargetMID(payload []byte) (int, error) {
	c := fields.NewCursor(payload)
	return c.ReadNumber("targetMID", 4)
}

// noDirectSerialize rejects direct use of a registry-rewrite-only MID: 5,
// 8, and 9 are produced by Registry.Serialize's IsAck/Subscribe bypass, not
// by a caller setting msg.MID directly.
func noDirectSerialize(midNum int) mid.SerializeFunc {
	return func(_ *message.Message) ([]byte, error) {
		return nil, fmt.Errorf("mid %d: produced only via the ack/subscribe rewrite, not directly", midNum)
	}
}

func init() {
	mid.Default().Register(5, &mid.Codec{
		Revisions: []int{1},
		Parse: func(payload []byte, _ *message.Message) (any, error) {
			n, err := parseTargetMID(payload)
			if err != nil {
				return nil, err
			}
			return &CommandAccepted{AcknowledgedMID: n}, nil
		},
		Serialize: noDirectSerialize(5),
	})

	mid.Default().Register(8, &mid.Codec{
		Revisions: []int{1},
		Parse: func(payload []byte, _ *message.Message) (any, error) {
			n, err := parseTargetMID(payload)
			if err != nil {
				return nil, err
			}
			return &SubscribeRequest{TargetMID: n}, nil
		},
		Serialize: noDirectSerialize(8),
	})

	mid.Default().Register(9, &mid.Codec{
		Revisions: []int{1},
		Parse: func(payload []byte, _ *message.Message) (any, error) {
			n, err := parseTargetMID(payload)
			if err != nil {
				return nil, err
			}
			return &SubscribeRequest{TargetMID: n}, nil
		},
		Serialize: noDirectSerialize(9),
	})
}

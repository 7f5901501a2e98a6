package codecs

import (
	"fmt"

	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"
	"github.com/kulaginds/openprotocol/internal/protocol/mid/fields"
)

// MID 0010: Parameter set selected, sent by the controller whenever the
// active parameter set (PSET) changes, including at subscription time.
type ParameterSetSelected struct {
	PSetID int
}

// MID 0014: Parameter set selected acknowledge.
type ParameterSetSelectedAck struct{}

func init() {
	mid.Default().Register(10, &mid.Codec{
		Revisions: []int{1, 2},
		Parse: func(payload []byte, _ *message.Message) (any, error) {
			c := fields.NewCursor(payload)
			psetID, err := c.ReadNumber("pSetID", 3)
			if err != nil {
				return nil, err
			}
			return &ParameterSetSelected{PSetID: psetID}, nil
		},
		Serialize: func(msg *message.Message) ([]byte, error) {
			ps, ok := msg.Payload.(*ParameterSetSelected)
			if !ok {
				return nil, fmt.Errorf("mid 10: payload is not *ParameterSetSelected")
			}
			return []byte(fmt.Sprintf("%03d", ps.PSetID)), nil
		},
	})

	mid.Default().Register(14, &mid.Codec{
		Revisions: []int{1},
		Parse: func(_ []byte, _ *message.Message) (any, error) {
			return &ParameterSetSelectedAck{}, nil
		},
		Serialize: func(_ *message.Message) ([]byte, error) {
			return nil, nil
		},
	})
}

package codecs

import (
	"fmt"

	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"
	"github.com/kulaginds/openprotocol/internal/protocol/mid/fields"
)

// MID 0061: Last tightening result data, the controller's report of one
// completed tightening: a fixed identification block followed by a
// variable-length Data Field group.
type TighteningResult struct {
	CellID     int
	ChannelID  int
	TorqueOK   bool
	AngleOK    bool
	DataFields []fields.DataField
}

// MID 0062: Last tightening result acknowledge.
type TighteningResultAck struct{}

func init() {
	mid.Default().Register(61, &mid.Codec{
		Revisions: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 999},
		Parse: func(payload []byte, _ *message.Message) (any, error) {
			c := fields.NewCursor(payload)

			cellID, err := c.ReadNumber("cellID", 4)
			if err != nil {
				return nil, err
			}
			channelID, err := c.ReadNumber("channelID", 2)
			if err != nil {
				return nil, err
			}
			torqueStatus, err := c.ReadNumber("torqueStatus", 1)
			if err != nil {
				return nil, err
			}
			angleStatus, err := c.ReadNumber("angleStatus", 1)
			if err != nil {
				return nil, err
			}
			fieldCount, err := c.ReadNumber("numDataFields", 2)
			if err != nil {
				return nil, err
			}

			df := fields.ReadDataFields(c, fieldCount)

			return &TighteningResult{
				CellID:     cellID,
				ChannelID:  channelID,
				TorqueOK:   torqueStatus == 1,
				AngleOK:    angleStatus == 1,
				DataFields: df,
			}, nil
		},
		Serialize: func(msg *message.Message) ([]byte, error) {
			tr, ok := msg.Payload.(*TighteningResult)
			if !ok {
				return nil, fmt.Errorf("mid 61: payload is not *TighteningResult")
			}

			buf := fmt.Sprintf("%04d%02d%d%d%02d",
				tr.CellID, tr.ChannelID, boolToInt(tr.TorqueOK), boolToInt(tr.AngleOK), len(tr.DataFields))

			for _, f := range tr.DataFields {
				buf += fmt.Sprintf("%s%03d%02d%03d%04d%s",
					f.ParameterID, len(f.Value), f.DataType, f.Unit, f.StepNumber, f.Value)
			}

			return []byte(buf), nil
		},
	})

	mid.Default().Register(62, &mid.Codec{
		Revisions: []int{1},
		Parse: func(_ []byte, _ *message.Message) (any, error) {
			return &TighteningResultAck{}, nil
		},
		Serialize: func(_ *message.Message) ([]byte, error) {
			return nil, nil
		},
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package codecs

import (
	"fmt"

	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"
	"github.com/kulaginds/openprotocol/internal/protocol/mid/fields"
)

// MID 0063: Trace curve subscribe, carrying the cell ID, channel ID and
// sample unit code; it has no field selecting which curve is delivered.
type TraceCurveSubscribe struct {
	CellID    int
	ChannelID int
	Unit      int
}

// MID 0064: Trace curve data, the controller's upload of one curve: a
// scaling Data Field group followed by the raw 16-bit sample array.
type TraceCurveData struct {
	CellID      int
	ChannelID   int
	BaseTimeMS  int64
	TimeValue   int64
	Unit        int
	ScaleFields []fields.DataField
	Samples     []fields.TraceSample
}

func init() {
	mid.Default().Register(63, &mid.Codec{
		Revisions: []int{1},
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
			unit, err := c.ReadNumber("unit", 3)
			if err != nil {
				return nil, err
			}
			return &TraceCurveSubscribe{CellID: cellID, ChannelID: channelID, Unit: unit}, nil
		},
		Serialize: func(msg *message.Message) ([]byte, error) {
			ts, ok := msg.Payload.(*TraceCurveSubscribe)
			if !ok {
				return nil, fmt.Errorf("mid 63: payload is not *TraceCurveSubscribe")
			}
			return []byte(fmt.Sprintf("%04d%02d%03d", ts.CellID, ts.ChannelID, ts.Unit)), nil
		},
	})

	mid.Default().Register(64, &mid.Codec{
		Revisions: []int{1},
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
			baseTime, err := c.ReadNumber("baseTime", 10)
			if err != nil {
				return nil, err
			}
			timeValue, err := c.ReadNumber("timeValue", 4)
			if err != nil {
				return nil, err
			}
			unit, err := c.ReadNumber("unit", 3)
			if err != nil {
				return nil, err
			}
			scaleCount, err := c.ReadNumber("numScaleFields", 2)
			if err != nil {
				return nil, err
			}

			scaleFields := fields.ReadDataFields(c, scaleCount)

			sampleCount, err := c.ReadNumber("numSamples", 5)
			if err != nil {
				return nil, err
			}

			samples, err := fields.ReadTraceSamples(c, sampleCount, int64(baseTime), int64(timeValue), unit, scaleFields)
			if err != nil {
				return nil, err
			}

			return &TraceCurveData{
				CellID:      cellID,
				ChannelID:   channelID,
				BaseTimeMS:  int64(baseTime),
				TimeValue:   int64(timeValue),
				Unit:        unit,
				ScaleFields: scaleFields,
				Samples:     samples,
			}, nil
		},
		Serialize: func(msg *message.Message) ([]byte, error) {
			_, ok := msg.Payload.(*TraceCurveData)
			if !ok {
				return nil, fmt.Errorf("mid 64: payload is not *TraceCurveData")
			}
			// Trace curve data is controller-originated only; this module
			// does not emit it, so no client-side encoder is required.
			return nil, fmt.Errorf("mid 64: serialize not supported, controller-originated only")
		},
	})
}

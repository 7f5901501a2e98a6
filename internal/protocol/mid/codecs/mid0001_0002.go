// Package codecs registers the illustrative MID leaf codecs this module
// ships: concrete, small parse/serialize pairs for the MIDs spec.md calls
// out as needed "to pin down the codec conventions." Each file mirrors
// one MID (or one closely related pair), following the teacher's
// one-capability-set-per-file layout.
package codecs

import (
	"fmt"
	"strings"

	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"
	"github.com/kulaginds/openprotocol/internal/protocol/mid/fields"
)

// MID 0001: Communication start (controller request/acknowledge). Revision
// 1 carries no data at all; CellID/ChannelID are only ever populated when
// the peer includes the optional numbered fields 01/02.
type CommunicationStart struct {
	CellID    int
	ChannelID int
}

// MID 0002: Communication start acknowledge.
type CommunicationStartAck struct {
	CellID         int
	ChannelID      int
	ControllerName string
}

// Field numbers for the MID 0001/0002 numbered-field layout: each field is
// prefixed by a 2-digit field number identifying which value follows,
// rather than appearing at a fixed offset, so a peer may omit or reorder
// fields.
const (
	fieldCellID         = 1
	fieldChannelID      = 2
	fieldControllerName = 3
)

func init() {
	mid.Default().Register(1, &mid.Codec{
		Revisions: []int{1, 2, 3, 4, 5, 6},
		Parse: func(payload []byte, _ *message.Message) (any, error) {
			cs := &CommunicationStart{}
			c := fields.NewCursor(payload)
			for c.Remaining() > 0 {
				fieldNum, err := c.ReadNumber("fieldNumber", 2)
				if err != nil {
					break
				}
				switch fieldNum {
				case fieldCellID:
					cs.CellID, err = c.ReadNumber("cellID", 4)
				case fieldChannelID:
					cs.ChannelID, err = c.ReadNumber("channelID", 2)
				default:
					return cs, nil
				}
				if err != nil {
					return nil, err
				}
			}
			return cs, nil
		},
		Serialize: func(msg *message.Message) ([]byte, error) {
			if msg.Payload == nil {
				return nil, nil
			}
			cs, ok := msg.Payload.(*CommunicationStart)
			if !ok {
				return nil, fmt.Errorf("mid 1: payload is not *CommunicationStart")
			}
			var b strings.Builder
			if cs.CellID != 0 {
				fmt.Fprintf(&b, "%02d%04d", fieldCellID, cs.CellID)
			}
			if cs.ChannelID != 0 {
				fmt.Fprintf(&b, "%02d%02d", fieldChannelID, cs.ChannelID)
			}
			return []byte(b.String()), nil
		},
	})

	mid.Default().Register(2, &mid.Codec{
		Revisions: []int{1, 2, 3, 4, 5, 6},
		Parse: func(payload []byte, _ *message.Message) (any, error) {
			cs := &CommunicationStartAck{}
			c := fields.NewCursor(payload)
			for c.Remaining() > 0 {
				fieldNum, err := c.ReadNumber("fieldNumber", 2)
				if err != nil {
					break
				}
				switch fieldNum {
				case fieldCellID:
					cs.CellID, err = c.ReadNumber("cellID", 4)
				case fieldChannelID:
					cs.ChannelID, err = c.ReadNumber("channelID", 2)
				case fieldControllerName:
					cs.ControllerName, err = c.ReadString("controllerName", 25)
				default:
					return cs, nil
				}
				if err != nil {
					return nil, err
				}
			}
			return cs, nil
		},
		Serialize: func(msg *message.Message) ([]byte, error) {
			cs, ok := msg.Payload.(*CommunicationStartAck)
			if !ok {
				return nil, fmt.Errorf("mid 2: payload is not *CommunicationStartAck")
			}
			var b strings.Builder
			fmt.Fprintf(&b, "%02d%04d", fieldCellID, cs.CellID)
			fmt.Fprintf(&b, "%02d%02d", fieldChannelID, cs.ChannelID)
			fmt.Fprintf(&b, "%02d%s", fieldControllerName, padName(cs.ControllerName, 25))
			return []byte(b.String()), nil
		},
	})
}

func padName(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	b := make([]byte, width)
	copy(b, s)
	for i := len(s); i < width; i++ {
		b[i] = ' '
	}
	return string(b)
}

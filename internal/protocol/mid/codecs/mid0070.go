package codecs

import (
	"fmt"

	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"
	"github.com/kulaginds/openprotocol/internal/protocol/mid/fields"
)

// MID 0070: Alarm, an unsolicited fault notification from the controller.
type Alarm struct {
	AlarmNumber int
	AlarmText   string
	StatusCode  int
}

func init() {
	mid.Default().Register(70, &mid.Codec{
		Revisions: []int{1, 2},
		Parse: func(payload []byte, _ *message.Message) (any, error) {
			c := fields.NewCursor(payload)
			num, err := c.ReadNumber("alarmNumber", 4)
			if err != nil {
				return nil, err
			}
			status, err := c.ReadNumber("statusCode", 1)
			if err != nil {
				return nil, err
			}
			text, err := c.ReadString("alarmText", 40)
			if err != nil {
				return nil, err
			}
			return &Alarm{AlarmNumber: num, StatusCode: status, AlarmText: text}, nil
		},
		Serialize: func(msg *message.Message) ([]byte, error) {
			a, ok := msg.Payload.(*Alarm)
			if !ok {
				return nil, fmt.Errorf("mid 70: payload is not *Alarm")
			}
			return []byte(fmt.Sprintf("%04d%d%s", a.AlarmNumber, a.StatusCode, padName(a.AlarmText, 40))), nil
		},
	})
}

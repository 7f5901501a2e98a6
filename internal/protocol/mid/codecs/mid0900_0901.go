package codecs

import (
	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"
)

// MID 0900: Keep alive, the unterminated heartbeat frame either side may
// send to hold a connection open across an idle period.
type KeepAlive struct{}

// MID 0901: Keep alive acknowledge.
type KeepAliveAck struct{}

func init() {
	mid.Default().Register(900, &mid.Codec{
		Revisions: []int{1},
		Parse: func(_ []byte, _ *message.Message) (any, error) {
			return &KeepAlive{}, nil
		},
		Serialize: func(_ *message.Message) ([]byte, error) {
			return nil, nil
		},
	})

	mid.Default().Register(901, &mid.Codec{
		Revisions: []int{1},
		Parse: func(_ []byte, _ *message.Message) (any, error) {
			return &KeepAliveAck{}, nil
		},
		Serialize: func(_ *message.Message) ([]byte, error) {
			return nil, nil
		},
	})
}

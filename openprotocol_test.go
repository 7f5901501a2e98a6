package openprotocol_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kulaginds/openprotocol"
)

func TestDialDeliversCommunicationStartAck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, aerr := ln.Accept()
		if aerr != nil {
			return
		}
		defer conn.Close()

		// Numbered fields: 01=cellID(4), 02=channelID(2), 03=controllerName(25).
		payload := "01" + "0001" + "02" + "01" + "03" + fitName("bench")
		frame := framePayload(2, payload)
		_, _ = conn.Write(frame)

		// Keep the connection open long enough for the client to read it
		// and for its own (separately tested) writes not to see ECONNRESET.
		time.Sleep(200 * time.Millisecond)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := openprotocol.Dial(ctx, ln.Addr().String(), openprotocol.Options{})
	require.NoError(t, err)
	defer client.Close()

	select {
	case m := <-client.Events():
		require.Equal(t, 2, m.MID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivered message")
	}

	// The default registry's MID 1 codec expects a *codecs.CommunicationStart,
	// not an anonymous struct; this exercises the serialize-error path and
	// confirms a bad caller payload surfaces as a write error rather than a
	// hang or panic.
	err = client.Write(ctx, &openprotocol.Message{MID: 1, Payload: &struct{}{}})
	require.Error(t, err)

	<-serverDone
}

func fitName(s string) string {
	const width = 25
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

func framePayload(mid int, payload string) []byte {
	length := 20 + len(payload)
	frame := make([]byte, 0, length+1)
	frame = append(frame, []byte(pad(length, 4))...)
	frame = append(frame, []byte(pad(mid, 4))...)
	frame = append(frame, "001"...)
	frame = append(frame, '0')
	frame = append(frame, "00"...)
	frame = append(frame, "00"...)
	frame = append(frame, "00"...)
	frame = append(frame, '0')
	frame = append(frame, '0')
	frame = append(frame, payload...)
	frame = append(frame, 0x00)
	return frame
}

func pad(n, width int) string {
	s := ""
	for range make([]struct{}, width) {
		s = string(rune('0'+n%10)) + s
		n /= 10
	}
	return s
}

// Package linklayer implements Open Protocol's application-layer
// reliability protocol: sequencing, multi-part reassembly, ack/nack, and
// retransmission over a byte-stream transport. It owns no socket of its
// own; the caller dials and passes in an io.ReadWriteCloser (typically a
// net.Conn), mirroring the teacher's layered-transport convention of
// wrapping the connection below rather than opening one.
package linklayer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/kulaginds/openprotocol/internal/logging"
	"github.com/kulaginds/openprotocol/internal/protocol/header"
	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"
)

const readBufSize = 4096

// writeRequest is one caller write in flight through the writeReqs channel.
type writeRequest struct {
	msg  *message.Message
	done chan error
}

// LinkLayer drives Open Protocol's Link Layer as a single cooperative
// goroutine (run), fed by a separate read-pump goroutine. All pipeline
// state — pending write, sequence counters, partial-reassembly buffer,
// last-delivered key — lives in run's local variables and is touched only
// there; every other method communicates with it exclusively over
// channels, so the struct itself needs no mutex.
type LinkLayer struct {
	conn     io.ReadWriteCloser
	registry *mid.Registry
	opts     Options
	parser   *header.Parser
	log      *logging.Logger

	events        chan *message.Message
	errs          chan error
	serializeErrs chan error

	writeReqs chan *writeRequest
	inbound   chan []byte
	readErrs  chan error
	activateC chan bool

	destroyC    chan struct{}
	destroyOnce sync.Once
	done        chan struct{}
}

// New constructs a LinkLayer over conn, dispatching decoded payloads
// through registry. The returned LinkLayer starts in Inactive mode (per
// spec, the default) and immediately starts its read-pump and driver
// goroutines; call Destroy to stop them.
func New(conn io.ReadWriteCloser, registry *mid.Registry, opts Options) *LinkLayer {
	opts = opts.WithDefaults()

	l := &LinkLayer{
		conn:          conn,
		registry:      registry,
		opts:          opts,
		parser:        header.NewParser(opts.RawData),
		log:           logging.Default().Named("linklayer"),
		events:        make(chan *message.Message, 32),
		errs:          make(chan error, 32),
		serializeErrs: make(chan error, 32),
		writeReqs:     make(chan *writeRequest),
		inbound:       make(chan []byte, 32),
		readErrs:      make(chan error, 1),
		activateC:     make(chan bool),
		destroyC:      make(chan struct{}),
		done:          make(chan struct{}),
	}

	go l.readPump()
	go l.run()

	return l
}

// Events delivers successfully parsed inbound Messages, in arrival order,
// after reassembly and duplicate suppression.
func (l *LinkLayer) Events() <-chan *message.Message { return l.events }

// Errors delivers inbound/protocol failures: framing errors, sequencing
// violations, ack mismatches, and the like.
func (l *LinkLayer) Errors() <-chan error { return l.errs }

// SerializeErrors delivers outbound encoding failures, kept distinct from
// Errors so callers can route them differently.
func (l *LinkLayer) SerializeErrors() <-chan error { return l.serializeErrs }

// Activate engages full sequencing: acks are expected and required for
// non-ack writes, inbound sequence numbers are validated.
func (l *LinkLayer) Activate() { l.setActive(true) }

// Deactivate returns to the zero-sequencing default: no acks expected, no
// retries armed, inbound sequencing unchecked.
func (l *LinkLayer) Deactivate() { l.setActive(false) }

func (l *LinkLayer) setActive(v bool) {
	select {
	case l.activateC <- v:
	case <-l.done:
	}
}

// Write enqueues msg and blocks until its completion fires or ctx is
// cancelled. It is the synchronous wrapper around WriteAsync.
func (l *LinkLayer) Write(ctx context.Context, msg *message.Message) error {
	done := make(chan error, 1)
	req := &writeRequest{msg: msg, done: done}

	select {
	case l.writeReqs <- req:
	case <-l.done:
		return fmt.Errorf("linklayer: destroyed")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return fmt.Errorf("linklayer: destroyed before write completed")
	}
}

// WriteAsync enqueues msg and invokes onComplete exactly once, from a
// helper goroutine relaying the driver's result — never called twice, and
// never called at all if Destroy fires first (per spec: "destroyed is
// destroyed", a pending write receives no final callback).
func (l *LinkLayer) WriteAsync(msg *message.Message, onComplete func(error)) {
	done := make(chan error, 1)
	req := &writeRequest{msg: msg, done: done}

	go func() {
		select {
		case l.writeReqs <- req:
		case <-l.done:
			return
		}

		select {
		case err := <-done:
			if onComplete != nil {
				onComplete(err)
			}
		case <-l.done:
		}
	}()
}

// Destroy tears down the driver and read-pump goroutines and cancels any
// outstanding retransmit timer. It does not close conn, which the caller
// owns.
func (l *LinkLayer) Destroy() {
	l.destroyOnce.Do(func() {
		l.log.Debug("destroying")
		close(l.destroyC)
	})
}

// readPump is the sole reader of conn, decoupling blocking I/O from the
// single-threaded driver loop: every chunk it reads is handed to run over
// the buffered inbound channel.
func (l *LinkLayer) readPump() {
	buf := make([]byte, readBufSize)
	for {
		n, err := l.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case l.inbound <- chunk:
			case <-l.done:
				return
			}
		}
		if err != nil {
			l.log.Debug("read loop exiting: %v", err)
			select {
			case l.readErrs <- err:
			case <-l.done:
			}
			return
		}
	}
}

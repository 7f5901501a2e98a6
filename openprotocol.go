// Package openprotocol is a client-side implementation of Open Protocol, the
// ASCII-framed request/response protocol industrial tightening controllers
// speak over TCP. It dials a controller, drives the Link Layer's
// sequencing/ack/retry state machine, and hands the caller decoded
// Messages.
package openprotocol

import (
	"context"
	"fmt"
	"net"

	"github.com/kulaginds/openprotocol/internal/config"
	"github.com/kulaginds/openprotocol/internal/protocol/linklayer"
	"github.com/kulaginds/openprotocol/internal/protocol/message"
	"github.com/kulaginds/openprotocol/internal/protocol/mid"

	// Registers the shipped MID leaf codecs into mid.Default() via their
	// package-level init() functions.
	_ "github.com/kulaginds/openprotocol/internal/protocol/mid/codecs"
)

// Message is the in-memory record exchanged with a controller: header
// fields plus a Payload that is raw bytes, ASCII text, or (once parsed by
// a registered MID codec) a structured record.
type Message = message.Message

// Options configures the Link Layer: retransmit timeout, retry limit, raw
// data capture, and per-MID parsing bypass.
type Options = linklayer.Options

// Client is one controller connection: a dialed net.Conn driven by a
// Link Layer.
type Client struct {
	conn net.Conn
	*linklayer.LinkLayer
}

// Dial opens a TCP connection to addr and starts a Link Layer over it
// using the shared MID registry populated by this package's codec
// imports. The returned Client starts in Inactive mode; call Activate to
// engage full sequencing.
func Dial(ctx context.Context, addr string, opts Options) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("openprotocol: dial %s: %w", addr, err)
	}

	return &Client{
		conn:      conn,
		LinkLayer: linklayer.New(conn, mid.Default(), opts),
	}, nil
}

// DialFromEnv loads connection and Link Layer options from environment
// variables (see internal/config) and dials the resulting address,
// letting an operator point the client at a controller without touching
// code.
func DialFromEnv(ctx context.Context) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("openprotocol: load config: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Connection.DialTimeout)
	defer cancel()

	return Dial(dialCtx, cfg.Connection.Address(), cfg.LinkLayer.ToOptions())
}

// Close destroys the Link Layer's driver goroutines and closes the
// underlying connection.
func (c *Client) Close() error {
	c.LinkLayer.Destroy()
	return c.conn.Close()
}

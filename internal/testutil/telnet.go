// Package testutil provides helpers for end-to-end tests against a live
// Telnet dice table.
package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dicetable/internal/config"
	"github.com/cory-johannsen/dicetable/internal/frontend/telnet"
)

// DefaultTimeout bounds every read and write a TelnetClient performs.
const DefaultTimeout = 2 * time.Second

// ServeTelnet runs handler behind a Telnet acceptor on a random local port
// and stops it when the test ends.
//
// Postcondition: Returns the listening "host:port" or fails the test.
func ServeTelnet(t *testing.T, handler telnet.SessionHandler) string {
	t.Helper()
	cfg := config.TelnetConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	acc := telnet.NewAcceptor(cfg, handler, zaptest.NewLogger(t))
	go func() { _ = acc.ListenAndServe() }()
	t.Cleanup(acc.Stop)

	deadline := time.Now().Add(DefaultTimeout)
	for !acc.IsRunning() || acc.Addr() == "" {
		if time.Now().After(deadline) {
			t.Fatal("acceptor did not start in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return acc.Addr()
}

// TelnetClient is a scripted player. Output is buffered across ReadUntil
// calls; each call consumes only up to and including its match.
type TelnetClient struct {
	conn   net.Conn
	t      *testing.T
	buffer string
}

// NewTelnetClient dials addr and closes the connection when the test ends.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, DefaultTimeout)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads until substr appears and returns the consumed output with
// ANSI styling removed. Matching is done on the raw stream.
func (c *TelnetClient) ReadUntil(substr string) string {
	c.t.Helper()
	if idx := strings.Index(c.buffer, substr); idx >= 0 {
		return c.consume(idx + len(substr))
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(DefaultTimeout))
	tmp := make([]byte, 4096)
	for {
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.buffer += string(tmp[:n])
			if idx := strings.Index(c.buffer, substr); idx >= 0 {
				return c.consume(idx + len(substr))
			}
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, c.buffer, err)
		}
	}
}

func (c *TelnetClient) consume(end int) string {
	out := c.buffer[:end]
	c.buffer = c.buffer[end:]
	return telnet.StripANSI(out)
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(DefaultTimeout))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// JoinTable connects, answers the name prompt and waits for the first
// command prompt.
func JoinTable(t *testing.T, addr, name string) *TelnetClient {
	t.Helper()
	c := NewTelnetClient(t, addr)
	c.ReadUntil("What is your name? ")
	c.Send(name)
	c.ReadUntil("Welcome, " + name)
	c.ReadUntil("> ")
	return c
}

package telnet

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet command bytes (RFC 854).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// MaxLineLength bounds a single line of player input.
const MaxLineLength = 1024

// ErrLineTooLong is returned by ReadLine when a line exceeds MaxLineLength.
// The rest of the line is discarded so the next read starts clean.
var ErrLineTooLong = errors.New("telnet: line too long")

// Conn is a line-oriented Telnet connection. Option negotiation from the
// client is consumed and ignored.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	// skipLF is set when a CR ended the previous line, so the LF of a CRLF
	// pair is dropped on the next read instead of waiting for it.
	skipLF bool

	wmu          sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw with Telnet handling. Zero timeouts disable deadlines.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate announces that the server suppresses go-ahead.
func (c *Conn) Negotiate() error {
	return c.write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line without its terminator. CR, LF, CRLF and
// CR NUL all end a line, and a line ending in CR is returned without waiting
// for the byte that follows. Control characters other than tab are dropped.
// ReadLine must not be called concurrently.
//
// Postcondition: On ErrLineTooLong the returned text is truncated to MaxLineLength.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line strings.Builder
	overflow := false
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		if c.skipLF {
			c.skipLF = false
			if b == '\n' || b == 0 {
				continue
			}
		}

		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
			continue
		case b == '\n':
		case b == '\r':
			c.skipLF = true
		case b < 32 && b != '\t':
			continue
		default:
			if line.Len() >= MaxLineLength {
				overflow = true
				continue
			}
			line.WriteByte(b)
			continue
		}
		break
	}

	if overflow {
		return line.String(), ErrLineTooLong
	}
	return line.String(), nil
}

// skipCommand consumes the remainder of a command after its IAC byte.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}

	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err := c.reader.ReadByte()
		return err
	case SB:
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if b != IAC {
				continue
			}
			next, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if next == SE {
				return nil
			}
		}
	}
	// IAC IAC (a literal 0xFF) and bare commands carry no text.
	return nil
}

// WriteLine sends text terminated by CRLF.
func (c *Conn) WriteLine(text string) error {
	return c.write([]byte(text + "\r\n"))
}

// WriteLines sends each line terminated by CRLF in a single write.
func (c *Conn) WriteLines(lines ...string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\r\n")
	}
	return c.write([]byte(b.String()))
}

// WritePrompt sends prompt without a line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.write([]byte(prompt))
}

func (c *Conn) write(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if _, err := c.raw.Write(data); err != nil {
		return fmt.Errorf("telnet write: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

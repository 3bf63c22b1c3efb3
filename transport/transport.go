// Package transport frames newline-terminated JSON records over a
// duplex byte stream.
package transport

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"raftkv/messages"
)

// Conn frames messages.Message values over a raw duplex stream. Send is
// fire-and-forget: there is no acknowledgement at this layer, reliability
// is built above it by the replication subsystem's retry logic.
type Conn struct {
	raw net.Conn
	buf []byte
	log hclog.Logger
}

// New wraps an already-established stream connection.
func New(raw net.Conn, log hclog.Logger) *Conn {
	return &Conn{raw: raw, log: log}
}

// Endpoint derives the socket path a replica listens on from its own id.
func Endpoint(id string) string {
	return "/tmp/raftkv-" + id + ".sock"
}

// Dial opens the replica's connection to the endpoint named by its own id.
func Dial(id string, log hclog.Logger) (*Conn, error) {
	raw, err := net.DialTimeout("unix", Endpoint(id), 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", id, err)
	}
	return New(raw, log), nil
}

// Send serializes msg, appends the newline frame delimiter, and writes it.
func (c *Conn) Send(msg messages.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	data = append(data, '\n')
	if _, err := c.raw.Write(data); err != nil {
		return fmt.Errorf("write frame to %s: %w", msg.Dst, err)
	}
	return nil
}

// Poll reads whatever is available within quantum and returns every
// whole record found. A timeout is reported as ok=true with no
// messages. ok=false means the peer closed the stream.
func (c *Conn) Poll(quantum time.Duration) (msgs []messages.Message, ok bool, err error) {
	c.raw.SetReadDeadline(time.Now().Add(quantum))

	tmp := make([]byte, 4096)
	n, readErr := c.raw.Read(tmp)
	if n > 0 {
		c.buf = append(c.buf, tmp[:n]...)
	}

	var frames [][]byte
	frames, c.buf = splitFrames(c.buf)
	for _, frame := range frames {
		var m messages.Message
		if jerr := json.Unmarshal(frame, &m); jerr != nil {
			if c.log != nil {
				c.log.Warn("dropping malformed frame", "error", jerr)
			}
			continue
		}
		msgs = append(msgs, m)
	}

	if readErr != nil {
		if netErr, isNetErr := readErr.(net.Error); isNetErr && netErr.Timeout() {
			return msgs, true, nil
		}
		if n == 0 {
			return msgs, false, nil
		}
		return msgs, false, fmt.Errorf("read frame: %w", readErr)
	}
	return msgs, true, nil
}

// splitFrames pulls every newline-terminated record out of buf and
// returns the leftover partial bytes for the next call.
func splitFrames(buf []byte) (frames [][]byte, rest []byte) {
	start := 0
	for i := 0; i < len(buf); i++ {
		if buf[i] == '\n' {
			frames = append(frames, buf[start:i])
			start = i + 1
		}
	}
	rest = append([]byte(nil), buf[start:]...)
	return frames, rest
}

// Close releases the underlying stream.
func (c *Conn) Close() error { return c.raw.Close() }

// NewCorrelationID generates a fresh correlation id for a message this
// replica originates.
func NewCorrelationID() string {
	return uuid.NewString()
}

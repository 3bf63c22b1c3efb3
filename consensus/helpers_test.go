package consensus

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"
	"time"

	"raftkv/config"
	"raftkv/messages"
	"raftkv/transport"
)

// newTestReplica wires a Replica to one end of an in-memory pipe and
// hands the test the other end, standing in for the network substrate.
func newTestReplica(t *testing.T, id string, peers []string) (*Replica, net.Conn) {
	t.Helper()
	replicaSide, testSide := net.Pipe()
	cfg := config.New(id, peers)
	return New(cfg, transport.New(replicaSide, nil), nil), testSide
}

// drainFrames continuously decodes newline-terminated frames from peer
// and forwards them to out, until peer is closed.
func drainFrames(peer net.Conn, out chan<- messages.Message) {
	var buf []byte
	tmp := make([]byte, 4096)
	for {
		n, err := peer.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			for {
				idx := bytes.IndexByte(buf, '\n')
				if idx < 0 {
					break
				}
				var m messages.Message
				if jsonErr := json.Unmarshal(buf[:idx], &m); jsonErr == nil {
					out <- m
				}
				buf = buf[idx+1:]
			}
		}
		if err != nil {
			return
		}
	}
}

func recvFrame(t *testing.T, frames <-chan messages.Message) messages.Message {
	t.Helper()
	select {
	case m := <-frames:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return messages.Message{}
	}
}

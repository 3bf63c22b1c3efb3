package consensus

import (
	"time"

	"raftkv/config"
	"raftkv/messages"
)

// Run drives the event loop until the connection closes or a hard I/O
// error occurs.
func (r *Replica) Run() error {
	for {
		r.applyCatchUp()

		msgs, ok, err := r.conn.Poll(config.PollQuantum)
		if err != nil {
			return err
		}
		if !ok {
			r.logr.Info("connection closed, stopping event loop")
			return nil
		}
		for _, m := range msgs {
			r.dispatch(m)
		}

		now := time.Now()
		r.retryPending(now)
		r.checkTimers(now)
	}
}

// dispatch routes an inbound frame to its handler by type tag.
func (r *Replica) dispatch(m messages.Message) {
	if m.IsBroadcast() && m.Src == r.cfg.ID {
		return // the network substrate loops a broadcast back to its sender
	}
	switch m.Type {
	case messages.TypeGet:
		r.handleClientGet(m)
	case messages.TypePut:
		r.handleClientPut(m)
	case messages.TypeRequestVote:
		r.handleRequestVote(m)
	case messages.TypeVote:
		r.handleVote(m)
	case messages.TypeAppendEntries:
		r.handleAppendEntries(m)
	case messages.TypeAppendOkay:
		r.handleAppendOkay(m)
	default:
		r.logr.Warn("dropping message of unknown type", "type", m.Type, "src", m.Src)
	}
}

// checkTimers fires election timeout, election window expiry, or
// heartbeat tick based on elapsed time.
func (r *Replica) checkTimers(now time.Time) {
	switch r.role {
	case Follower:
		if now.Sub(r.lastHeartbeatReceived) > r.cfg.ElectionTimeout {
			r.startElection()
		}
	case Candidate:
		if now.Sub(r.electionStart) > r.cfg.ElectionWindow {
			r.startElection()
		}
	case Leader:
		if now.Sub(r.lastHeartbeatSent) > r.cfg.HeartbeatInterval {
			r.broadcastHeartbeat()
		}
	}
}

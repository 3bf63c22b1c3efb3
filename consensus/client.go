package consensus

import "raftkv/messages"

// handleClientGet redirects non-leaders; the leader serves the read
// straight from the applied state machine.
func (r *Replica) handleClientGet(msg messages.Message) {
	if r.role != Leader {
		r.redirect(msg)
		return
	}
	value, _ := r.fsm.Get(msg.Key)
	reply := messages.Message{
		Src:    r.cfg.ID,
		Dst:    msg.Src,
		Leader: r.leaderHint,
		Type:   messages.TypeOK,
		MID:    msg.MID,
		Value:  value,
	}
	if err := r.conn.Send(reply); err != nil {
		r.logr.Warn("failed to reply to get", "error", err)
	}
}

// handleClientPut redirects non-leaders; the leader appends the entry
// and starts replication. The client hears back once it commits.
func (r *Replica) handleClientPut(msg messages.Message) {
	if r.role != Leader {
		r.redirect(msg)
		return
	}
	r.propose(msg.Src, msg.MID, msg.Key, msg.Value)
}

// redirect points a client at the replica this node believes is leader.
func (r *Replica) redirect(msg messages.Message) {
	reply := messages.Message{
		Src:    r.cfg.ID,
		Dst:    msg.Src,
		Leader: r.leaderHint,
		Type:   messages.TypeRedirect,
		MID:    msg.MID,
	}
	if err := r.conn.Send(reply); err != nil {
		r.logr.Warn("failed to send redirect", "error", err)
	}
}

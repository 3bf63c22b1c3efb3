package consensus

import (
	"encoding/binary"
	"encoding/hex"
	"hash/fnv"
	"time"

	"raftkv/messages"
	"raftkv/transport"
)

// proposalID hashes a log entry into a stable correlation key for quorum
// counting. Retries resend the identical entry, so they hash to the same
// id and late acks from the original broadcast still land on the live
// proposal.
func proposalID(e messages.Entry) string {
	h := fnv.New64a()
	h.Write([]byte(e.Key))
	h.Write([]byte{0})
	h.Write([]byte(e.Value))
	h.Write([]byte{0})
	var termBytes [8]byte
	binary.BigEndian.PutUint64(termBytes[:], uint64(e.Term))
	h.Write(termBytes[:])
	return hex.EncodeToString(h.Sum(nil))
}

// propose appends the entry, broadcasts an append-entries carrying the
// full log, and tracks the proposal until it commits or is retried.
func (r *Replica) propose(clientID, clientMID, key, value string) {
	entry := messages.Entry{Key: key, Value: value, Term: r.currentTerm}
	r.log.Append(entry)

	raw := r.buildAppendEntries(clientID, clientMID)

	id := proposalID(entry)
	r.pending[id] = &proposal{
		ClientID:  clientID,
		ClientMID: clientMID,
		Entries:   []messages.Entry{entry},
		Raw:       raw,
		IssuedAt:  time.Now(),
	}

	if err := r.conn.Send(raw); err != nil {
		r.logr.Warn("failed to broadcast append-entries", "error", err)
	}
}

// buildAppendEntries builds the leader's append-entries payload: the
// full current log, the leader's commit index, the originating client's
// id and correlation id, and the leader's term.
func (r *Replica) buildAppendEntries(clientID, clientMID string) messages.Message {
	return messages.Message{
		Src:       r.cfg.ID,
		Dst:       messages.BroadcastID,
		Leader:    r.leaderHint,
		Type:      messages.TypeAppendEntries,
		MID:       transport.NewCorrelationID(),
		Updates:   append([]messages.Entry(nil), r.log.Entries...),
		Commit:    r.log.CommitIndex,
		ClientID:  clientID,
		ClientMID: clientMID,
		Term:      r.currentTerm,
	}
}

// broadcastHeartbeat sends an append-entries with no updates.
func (r *Replica) broadcastHeartbeat() {
	msg := r.buildAppendEntries("", "")
	msg.Updates = nil
	if err := r.conn.Send(msg); err != nil {
		r.logr.Warn("failed to broadcast heartbeat", "error", err)
	}
	r.lastHeartbeatSent = time.Now()
}

// handleAppendOkay tallies an ack for a proposal and commits it once
// the tally reaches majority.
func (r *Replica) handleAppendOkay(msg messages.Message) {
	if r.role != Leader || len(msg.Updates) == 0 {
		return
	}
	id := proposalID(msg.Updates[len(msg.Updates)-1])
	p, ok := r.pending[id]
	if !ok || p.Committed {
		return
	}

	if p.Tally == 0 {
		p.Tally = 2
	} else {
		p.Tally++
	}

	if p.Tally >= r.cfg.Majority() {
		r.commitProposal(p)
	}
}

// commitProposal applies the proposal's entry to the state machine,
// advances the commit index, marks the proposal committed so late
// append_okay messages are ignored, and replies to the client.
func (r *Replica) commitProposal(p *proposal) {
	for _, e := range p.Entries {
		r.fsm.Apply(e.Key, e.Value)
	}
	r.log.CommitIndex++
	p.Committed = true

	r.logr.Info("committed entry", "commit_index", r.log.CommitIndex)
	reply := messages.Message{
		Src:    r.cfg.ID,
		Dst:    p.ClientID,
		Leader: r.leaderHint,
		Type:   messages.TypeOK,
		MID:    p.ClientMID,
	}
	if err := r.conn.Send(reply); err != nil {
		r.logr.Warn("failed to reply to client", "error", err)
	}
}

// retryPending retransmits proposals older than the consensus timeout
// and resets their tally.
func (r *Replica) retryPending(now time.Time) {
	for id, p := range r.pending {
		if p.Committed {
			continue
		}
		if now.Sub(p.IssuedAt) <= r.cfg.ConsensusTimeout {
			continue
		}
		r.logr.Debug("retrying unacknowledged proposal", "id", id)
		if err := r.conn.Send(p.Raw); err != nil {
			r.logr.Warn("failed to retransmit proposal", "error", err)
			continue
		}
		p.Tally = 0
		p.IssuedAt = now
	}
}

// handleAppendEntries is the follower side of replication. Liveness is
// stamped and a candidate reverts to follower before any term check that
// might otherwise drop the message.
func (r *Replica) handleAppendEntries(msg messages.Message) {
	r.lastHeartbeatReceived = time.Now() // 1

	if r.role == Candidate {
		r.role = Follower // 2
	}

	if r.role == Leader && msg.Term > r.currentTerm {
		r.role = Follower
		r.currentTerm = msg.Term
		return // 3: step down and drop
	}

	if msg.Term < r.currentTerm {
		return // 4: drop stale message
	}
	if msg.Term > r.currentTerm {
		r.currentTerm = msg.Term
	}

	r.leaderHint = msg.Src // 5

	r.advanceCommit(msg.Commit) // 6

	r.appendTail(msg) // 7
}

// advanceCommit applies newly committed entries present in the log, then
// adopts the leader's commit index.
func (r *Replica) advanceCommit(leaderCommit int) {
	if leaderCommit <= r.log.CommitIndex {
		return
	}
	for i := r.log.CommitIndex + 1; i <= leaderCommit; i++ {
		if i < r.log.Len() {
			e := r.log.Entries[i]
			r.fsm.Apply(e.Key, e.Value)
		}
	}
	r.log.CommitIndex = leaderCommit
}

// appendTail appends the new tail entry only when updates is exactly one
// longer than the follower's own log, so a retransmit of the full log
// doesn't duplicate it. The ack is sent either way.
func (r *Replica) appendTail(msg messages.Message) {
	if len(msg.Updates) == 0 {
		return
	}

	last := msg.Updates[len(msg.Updates)-1]
	if len(msg.Updates) == r.log.Len()+1 {
		r.log.Append(last)
	}

	reply := messages.Message{
		Src:       r.cfg.ID,
		Dst:       msg.Src,
		Leader:    r.leaderHint,
		Type:      messages.TypeAppendOkay,
		MID:       msg.MID,
		Updates:   msg.Updates,
		ClientID:  msg.ClientID,
		ClientMID: msg.ClientMID,
	}
	if err := r.conn.Send(reply); err != nil {
		r.logr.Warn("failed to ack append-entries", "error", err)
	}
}

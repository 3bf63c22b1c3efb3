package consensus

import (
	"time"

	"raftkv/messages"
	"raftkv/transport"
)

// startElection bumps the term, becomes a candidate, casts a self-vote,
// and broadcasts a requestVote.
func (r *Replica) startElection() {
	r.currentTerm++
	r.role = Candidate
	r.voteCount = 1
	r.voteLedger[r.currentTerm] = true
	r.electionStart = time.Now()

	last, hasLast := r.log.Last()
	r.electionMID = transport.NewCorrelationID()

	msg := messages.Message{
		Src:    r.cfg.ID,
		Dst:    messages.BroadcastID,
		Leader: r.leaderHint,
		Type:   messages.TypeRequestVote,
		MID:    r.electionMID,
		Term:   r.currentTerm,
		Length: r.log.Len(),
	}
	if hasLast {
		msg.LastEntry = &last
	}

	r.logr.Info("starting election", "term", r.currentTerm)
	if err := r.conn.Send(msg); err != nil {
		r.logr.Warn("failed to broadcast requestVote", "error", err)
	}
}

// handleRequestVote grants or silently denies a vote request. A denied
// vote gets no reply.
func (r *Replica) handleRequestVote(msg messages.Message) {
	if r.voteLedger[msg.Term] {
		return
	}

	var candidateLast messages.Entry
	hasLast := msg.LastEntry != nil
	if hasLast {
		candidateLast = *msg.LastEntry
	}
	if !r.log.CandidateAtLeastAsUpToDate(candidateLast, hasLast, msg.Length) {
		return
	}

	r.voteLedger[msg.Term] = true
	r.logr.Debug("granting vote", "candidate", msg.Src, "term", msg.Term)
	reply := messages.Message{
		Src:    r.cfg.ID,
		Dst:    msg.Src,
		Leader: r.leaderHint,
		Type:   messages.TypeVote,
		MID:    msg.MID,
	}
	if err := r.conn.Send(reply); err != nil {
		r.logr.Warn("failed to send vote", "error", err)
	}
}

// handleVote counts a vote toward the election that solicited it,
// matched by the requestVote's correlation id since vote carries no term.
func (r *Replica) handleVote(msg messages.Message) {
	if r.role != Candidate || msg.MID != r.electionMID {
		return
	}
	r.voteCount++
	if r.voteCount >= r.cfg.Majority() {
		r.becomeLeader()
	}
}

// becomeLeader adopts leadership, emits an immediate heartbeat, and
// schedules a catch-up replay for the next loop iteration.
func (r *Replica) becomeLeader() {
	r.role = Leader
	r.leaderHint = r.cfg.ID
	r.catchUpPending = true
	r.logr.Info("became leader", "term", r.currentTerm)
	r.broadcastHeartbeat()
}

// applyCatchUp replays a freshly elected leader's full log into its
// state machine, including entries a previous term left uncommitted.
func (r *Replica) applyCatchUp() {
	if !r.catchUpPending {
		return
	}
	for _, e := range r.log.Entries {
		r.fsm.Apply(e.Key, e.Value)
	}
	r.catchUpPending = false
}

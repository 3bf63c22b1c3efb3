// Package raftlog implements the append-only replicated log.
package raftlog

import "raftkv/messages"

// Log is the per-replica append-only sequence of entries, indexed from 0.
type Log struct {
	Entries []messages.Entry
	// CommitIndex is -1 when nothing has been committed; otherwise every
	// entry at index 0..CommitIndex is committed and must have been
	// applied to the state machine.
	CommitIndex int
}

// New returns an empty log with nothing committed.
func New() *Log {
	return &Log{CommitIndex: -1}
}

// Len reports the number of entries appended so far.
func (l *Log) Len() int {
	return len(l.Entries)
}

// Last returns the newest entry, or ok=false if the log is empty.
func (l *Log) Last() (entry messages.Entry, ok bool) {
	if len(l.Entries) == 0 {
		return messages.Entry{}, false
	}
	return l.Entries[len(l.Entries)-1], true
}

// Append adds e to the tail.
func (l *Log) Append(e messages.Entry) {
	l.Entries = append(l.Entries, e)
}

// CandidateAtLeastAsUpToDate reports whether a candidate's claimed log
// is at least as up-to-date as this (the voter's) log. candidateHasLast
// is false when the candidate's log is empty.
func (l *Log) CandidateAtLeastAsUpToDate(candidateLast messages.Entry, candidateHasLast bool, candidateLength int) bool {
	if l.Len() == 0 {
		return true // (a) voter has nothing to lose by granting
	}
	if !candidateHasLast {
		return true // (b) candidate's empty sentinel always qualifies
	}

	voterLast, _ := l.Last()
	switch {
	case candidateLast.Term > voterLast.Term:
		return true // (c)
	case candidateLast.Term < voterLast.Term:
		return false // (d)
	default:
		return l.Len() <= candidateLength // (e)
	}
}

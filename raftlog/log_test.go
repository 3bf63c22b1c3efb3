package raftlog_test

import (
	"testing"

	"raftkv/messages"
	"raftkv/raftlog"
)

func TestNewLogStartsWithNoCommit(t *testing.T) {
	l := raftlog.New()
	if l.CommitIndex != -1 {
		t.Errorf("expected CommitIndex -1, got %d", l.CommitIndex)
	}
	if _, ok := l.Last(); ok {
		t.Errorf("expected no last entry on an empty log")
	}
}

func TestAppendGrowsTail(t *testing.T) {
	l := raftlog.New()
	l.Append(messages.Entry{Key: "a", Value: "1", Term: 1})
	l.Append(messages.Entry{Key: "b", Value: "2", Term: 2})

	if l.Len() != 2 {
		t.Fatalf("expected length 2, got %d", l.Len())
	}
	last, ok := l.Last()
	if !ok || last.Key != "b" || last.Term != 2 {
		t.Errorf("unexpected last entry: %+v ok=%v", last, ok)
	}
}

func TestCandidateAtLeastAsUpToDate(t *testing.T) {
	empty := raftlog.New()
	if !empty.CandidateAtLeastAsUpToDate(messages.Entry{Term: 0}, true, 1) {
		t.Errorf("rule (a): an empty voter log must always grant")
	}

	voter := raftlog.New()
	voter.Append(messages.Entry{Key: "a", Value: "1", Term: 3})

	if !voter.CandidateAtLeastAsUpToDate(messages.Entry{}, false, 0) {
		t.Errorf("rule (b): candidate's empty sentinel must always grant")
	}

	if !voter.CandidateAtLeastAsUpToDate(messages.Entry{Term: 5}, true, 1) {
		t.Errorf("rule (c): higher candidate term must grant")
	}

	if voter.CandidateAtLeastAsUpToDate(messages.Entry{Term: 1}, true, 5) {
		t.Errorf("rule (d): lower candidate term must deny regardless of length")
	}

	if !voter.CandidateAtLeastAsUpToDate(messages.Entry{Term: 3}, true, 1) {
		t.Errorf("rule (e): equal term, candidate length >= voter length must grant")
	}
	if voter.CandidateAtLeastAsUpToDate(messages.Entry{Term: 3}, true, 0) {
		t.Errorf("rule (e): equal term, candidate length < voter length must deny")
	}
}

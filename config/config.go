// Package config holds a replica's identity, peer set, and timers.
package config

import (
	"math/rand"
	"time"
)

const (
	// ElectionTimeoutMin and ElectionTimeoutMax bound the follower
	// liveness window: a follower that hears nothing from a leader for
	// this long starts an election.
	ElectionTimeoutMin = 1000 * time.Millisecond
	ElectionTimeoutMax = 1200 * time.Millisecond

	// ElectionWindowMin and ElectionWindowMax bound how long a candidate
	// waits for its own election to resolve before trying again.
	ElectionWindowMin = 200 * time.Millisecond
	ElectionWindowMax = 1200 * time.Millisecond

	// HeartbeatInterval is how often a leader broadcasts an empty
	// append-entries to suppress followers' election timeouts. It must
	// stay strictly below ElectionTimeoutMin.
	HeartbeatInterval = 300 * time.Millisecond

	// ConsensusTimeout is how long a pending proposal waits for quorum
	// before the leader retransmits it.
	ConsensusTimeout = 400 * time.Millisecond

	// PollQuantum bounds the single suspension point of the event loop.
	PollQuantum = 10 * time.Millisecond
)

// Config holds one replica's identity, its fixed peer set, and the
// timers sampled once for its lifetime.
type Config struct {
	ID    string
	Peers []string

	ElectionTimeout   time.Duration
	ElectionWindow    time.Duration
	HeartbeatInterval time.Duration
	ConsensusTimeout  time.Duration
}

// New builds a Config for replica id among peers, sampling its election
// timeout and election window once so each replica gets its own draw.
func New(id string, peers []string) *Config {
	return &Config{
		ID:                id,
		Peers:             peers,
		ElectionTimeout:   sample(ElectionTimeoutMin, ElectionTimeoutMax),
		ElectionWindow:    sample(ElectionWindowMin, ElectionWindowMax),
		HeartbeatInterval: HeartbeatInterval,
		ConsensusTimeout:  ConsensusTimeout,
	}
}

func sample(min, max time.Duration) time.Duration {
	span := max - min
	if span <= 0 {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(span)))
}

// PeerCount reports how many other replicas are in the fixed set.
func (c *Config) PeerCount() int {
	return len(c.Peers)
}

// Majority is the vote or acknowledgement count strictly required to win
// an election or commit a log entry: floor((1+peer_count)/2) + 1.
func (c *Config) Majority() int {
	return (1+len(c.Peers))/2 + 1
}

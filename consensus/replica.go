// Package consensus implements the Raft-style consensus core: leader
// election, log replication, and client request handling, all driven by
// a single-threaded event loop.
package consensus

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"raftkv/config"
	"raftkv/messages"
	"raftkv/raftlog"
	"raftkv/store"
	"raftkv/transport"
)

// Role is one of follower, candidate, or leader.
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "follower"
	case Candidate:
		return "candidate"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

// proposal tracks one in-flight put on the leader side.
type proposal struct {
	Tally     int
	Committed bool
	ClientID  string
	ClientMID string
	Entries   []messages.Entry
	Raw       messages.Message
	IssuedAt  time.Time
}

// Replica is one node of the cluster. All of its state is touched only
// from Run's event loop.
type Replica struct {
	cfg  *config.Config
	conn *transport.Conn
	log  *raftlog.Log
	fsm  *store.Store
	logr hclog.Logger

	role        Role
	currentTerm int
	leaderHint  string

	voteCount     int
	voteLedger    map[int]bool
	electionMID   string
	electionStart time.Time

	lastHeartbeatReceived time.Time
	lastHeartbeatSent     time.Time

	pending        map[string]*proposal
	catchUpPending bool
}

// New constructs a replica that starts as a follower, term 0, with no
// leader known.
func New(cfg *config.Config, conn *transport.Conn, logr hclog.Logger) *Replica {
	if logr == nil {
		logr = hclog.NewNullLogger()
	}
	now := time.Now()
	return &Replica{
		cfg:                   cfg,
		conn:                  conn,
		log:                   raftlog.New(),
		fsm:                   store.New(),
		logr:                  logr.Named(cfg.ID),
		role:                  Follower,
		leaderHint:            messages.UnknownLeaderID,
		voteLedger:            make(map[int]bool),
		lastHeartbeatReceived: now,
		pending:               make(map[string]*proposal),
	}
}

// Role reports the replica's current role.
func (r *Replica) Role() Role { return r.role }

// Term reports the replica's current term.
func (r *Replica) Term() int { return r.currentTerm }

// Store exposes the applied state machine, mainly for tests and local
// introspection tooling.
func (r *Replica) Store() *store.Store { return r.fsm }

// Log exposes the append-only log, mainly for tests and local
// introspection tooling.
func (r *Replica) Log() *raftlog.Log { return r.log }

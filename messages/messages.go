// Package messages defines the newline-terminated JSON wire format
// spoken between replicas and clients.
package messages

// BroadcastID addresses every peer at once. The same sentinel doubles as
// the "leader unknown" value carried in the leader hint field.
const BroadcastID = "FFFF"

// UnknownLeaderID is the leader hint a replica advertises before it has
// seen any append-entries traffic.
const UnknownLeaderID = BroadcastID

// Type tags. Inbound from clients: Get, Put. Outbound to clients: OK,
// Fail, Redirect. Inter-replica: RequestVote, Vote, AppendEntries,
// AppendOkay.
const (
	TypeGet           = "get"
	TypePut           = "put"
	TypeOK            = "ok"
	TypeFail          = "fail"
	TypeRedirect      = "redirect"
	TypeRequestVote   = "requestVote"
	TypeVote          = "vote"
	TypeAppendEntries = "append_entries_rpc"
	TypeAppendOkay    = "append_okay"
)

// Entry is the (key, value, term) triple appended to a replica's log.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Term  int    `json:"term"`
}

// Message is the single envelope every frame on the wire decodes into.
// Fields unused by a given type tag are left at their zero value and
// omitted from the encoded frame via omitempty, except the five
// mandatory envelope fields which are always present.
type Message struct {
	Src    string `json:"src"`
	Dst    string `json:"dst"`
	Leader string `json:"leader"`
	Type   string `json:"type"`
	MID    string `json:"MID"`

	// get / put
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`

	// requestVote
	Term      int    `json:"term,omitempty"`
	Length    int    `json:"length,omitempty"`
	LastEntry *Entry `json:"last_entry,omitempty"`

	// append_entries_rpc / append_okay
	Updates   []Entry `json:"updates,omitempty"`
	Commit    int     `json:"commit,omitempty"`
	ClientID  string  `json:"client_id,omitempty"`
	ClientMID string  `json:"client_mid,omitempty"`
}

// IsBroadcast reports whether dst addresses every peer.
func (m Message) IsBroadcast() bool {
	return m.Dst == BroadcastID
}

package domain

import (
	"errors"
	"time"
)

// ErrNoPlayerData is returned by a query that reached the server but got no
// player counts back. The cycle treats it as unreachable rather than
// defaulting the counts to zero.
var ErrNoPlayerData = errors.New("response has no player data")

// ErrTimeout is returned when a query does not finish within the poll ceiling.
var ErrTimeout = errors.New("query timed out")

// MaxDisplayNameLen is the longest channel name Discord accepts.
const MaxDisplayNameLen = 100

// Kind classifies why a poll failed. It feeds logs and metrics only.
type Kind string

const (
	KindNone      Kind = ""
	KindTimeout   Kind = "timeout"
	KindRefused   Kind = "refused"
	KindDNS       Kind = "dns"
	KindNoPlayers Kind = "no_players"
	KindProtocol  Kind = "protocol"
)

// Players is the online/max pair reported by the server.
type Players struct {
	Online uint32 `json:"online"`
	Max    uint32 `json:"max"`
}

// Outcome is the result of one poll: either Reachable with player counts or
// unreachable with the error that caused it. It is built fresh every cycle.
type Outcome struct {
	Reachable bool          `json:"reachable"`
	Players   Players       `json:"players"`
	Latency   time.Duration `json:"latency"`
	Kind      Kind          `json:"kind,omitempty"`
	Err       error         `json:"-"`
}

// Reachable builds the outcome of a poll that returned player counts.
func Reachable(p Players, latency time.Duration) Outcome {
	return Outcome{Reachable: true, Players: p, Latency: latency}
}

// Unreachable builds the outcome of a failed poll.
func Unreachable(kind Kind, err error) Outcome {
	return Outcome{Kind: kind, Err: err}
}

// Reason returns the failure description, or "" for a reachable outcome.
func (o Outcome) Reason() string {
	if o.Reachable || o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

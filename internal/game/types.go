package game

import (
	"sync"
	"time"
)

type Stage string

const (
	StageWaitingForPlayers Stage = "WAITING_FOR_PLAYERS_TO_JOIN"
	StagePlaying           Stage = "PLAYING"
	StageFinished          Stage = "FINISHED"
)

// Conn is the opaque handle the core holds for a connected client. The ws
// layer implements it; tests substitute fakes.
type Conn interface {
	ID() string
	Send(message string)
	Close()
}

// Article identifies a page by its absolute URL and its pathname. Pathnames
// are the identity used for tree lookups and destination checks; the URL is
// what goes over the wire.
type Article struct {
	URL  string
	Path string
}

// ClickCount is a player's best completed path length. Count == -1 means the
// destination has not been reached yet.
type ClickCount struct {
	Count int       `json:"count"`
	When  time.Time `json:"when"`
}

type Player struct {
	Alias      string
	IsCreator  bool
	Conn       Conn
	Submission *Article
	Tree       *Node
	VisitCount int
	Shortest   ClickCount
}

type State struct {
	Stage       Stage
	Timer       int
	Source      *Article
	Destination *Article
}

type Lobby struct {
	Code           string
	CreatedAt      time.Time
	State          State
	Players        []*Player // join order; Players[0] is promoted on creator loss
	RoundTimeLimit int       // seconds

	mu sync.Mutex
}

// playerByConnLocked assumes l.mu is held.
func (l *Lobby) playerByConnLocked(connID string) *Player {
	for _, p := range l.Players {
		if p.Conn.ID() == connID {
			return p
		}
	}
	return nil
}

package game

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	codeLength      = 4
	codeAlphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
	maxCodeAttempts = 3

	MinRoundTime = 5    // seconds
	MaxRoundTime = 1800 // seconds

	// Used when a round starts with no player submissions. Actual cannibal.
	fallbackDestination = "/wiki/Shia_LaBeouf"
)

var aliasPattern = regexp.MustCompile(`^[0-9A-Za-z]{1,12}$`)

// Config is the core's slice of the process configuration.
type Config struct {
	PlayerLimit int
	Host        string // article host, e.g. en.wikipedia.org
}

// Manager owns the two process-wide mappings: lobby code to lobby, and
// connection to its current lobby. Its mutex guards only those maps; each
// lobby is guarded by its own mutex, and the lock order is always manager
// before lobby.
type Manager struct {
	cfg   Config
	pages PageService
	log   zerolog.Logger

	mu      sync.RWMutex
	lobbies map[string]*Lobby
	conns   map[string]*Lobby

	tick    time.Duration
	newCode func() string
}

// PageService is what the core needs from the article host: a random page to
// race from and redirect resolution for visited pages. Both return absolute
// URLs.
type PageService interface {
	RandomArticle(ctx context.Context) (string, error)
	CanonicalArticle(ctx context.Context, pathname string) (string, error)
}

func NewManager(cfg Config, pages PageService, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		pages:   pages,
		log:     log,
		lobbies: make(map[string]*Lobby),
		conns:   make(map[string]*Lobby),
		tick:    time.Second,
		newCode: randomCode,
	}
}

// randomCode does not need to be cryptographically secure; lobby codes exist
// for uniqueness, not unpredictability.
func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// CreateLobby creates a lobby and joins the caller as its creator, returning
// the new lobby code.
func (m *Manager) CreateLobby(conn Conn, alias string, roundTimeLimit int) (string, error) {
	if !aliasPattern.MatchString(alias) {
		return "", ErrBadAlias
	}
	if roundTimeLimit < MinRoundTime || roundTimeLimit > MaxRoundTime {
		return "", ErrBadRoundTime
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conns[conn.ID()] != nil {
		return "", ErrAlreadyInLobby
	}

	var code string
	for i := 0; i < maxCodeAttempts; i++ {
		if c := m.newCode(); m.lobbies[c] == nil {
			code = c
			break
		}
	}
	if code == "" {
		return "", ErrCodesExhausted
	}

	lobby := &Lobby{
		Code:      code,
		CreatedAt: time.Now(),
		State: State{
			Stage: StageWaitingForPlayers,
			Timer: roundTimeLimit,
		},
		RoundTimeLimit: roundTimeLimit,
	}
	m.lobbies[code] = lobby
	m.log.Info().Str("code", code).Int("roundTimeLimit", roundTimeLimit).Msg("lobby created")

	if err := m.joinLocked(lobby, conn, alias, true); err != nil {
		delete(m.lobbies, code)
		return "", err
	}
	return code, nil
}

// Join adds the connection to an existing lobby under the given alias.
func (m *Manager) Join(conn Conn, alias, code string) error {
	if !aliasPattern.MatchString(alias) {
		return ErrBadAlias
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conns[conn.ID()] != nil {
		return ErrAlreadyInLobby
	}
	lobby := m.lobbies[code]
	if lobby == nil {
		return fmt.Errorf("lobby '%s': %w", code, ErrLobbyNotFound)
	}
	return m.joinLocked(lobby, conn, alias, false)
}

// joinLocked assumes m.mu is held.
func (m *Manager) joinLocked(lobby *Lobby, conn Conn, alias string, isCreator bool) error {
	lobby.mu.Lock()
	defer lobby.mu.Unlock()

	for _, p := range lobby.Players {
		if p.Conn.ID() == conn.ID() {
			return ErrAlreadyInLobby
		}
		if p.Alias == alias {
			return ErrDuplicateAlias
		}
	}
	if len(lobby.Players) >= m.cfg.PlayerLimit {
		return ErrLobbyFull
	}
	if lobby.State.Stage != StageWaitingForPlayers {
		return ErrGameInProgress
	}

	lobby.Players = append(lobby.Players, &Player{
		Alias:     alias,
		IsCreator: isCreator,
		Conn:      conn,
		Shortest:  ClickCount{Count: -1, When: time.Now()},
	})
	m.conns[conn.ID()] = lobby
	m.log.Debug().Str("code", lobby.Code).Str("alias", alias).Msg("player joined")

	m.playerListingLocked(lobby)

	// Latecomers see the submission state so far; nobody else is replayed.
	for _, p := range lobby.Players {
		if p.Submission != nil {
			conn.Send(fmt.Sprintf("SUBMIT %s %s", p.Alias, p.Submission.URL))
		}
	}
	return nil
}

// Disconnect removes the connection's player, promoting a new creator or
// tearing down the lobby as needed. It always terminates the underlying
// connection, even when the connection was never in a lobby. The ws layer
// guarantees it runs at most once per connection.
func (m *Manager) Disconnect(conn Conn) {
	defer conn.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	lobby := m.conns[conn.ID()]
	if lobby == nil {
		return
	}
	delete(m.conns, conn.ID())

	lobby.mu.Lock()
	defer lobby.mu.Unlock()

	wasCreator := false
	players := lobby.Players[:0]
	for _, p := range lobby.Players {
		if p.Conn.ID() == conn.ID() {
			wasCreator = p.IsCreator
			m.log.Debug().Str("code", lobby.Code).Str("alias", p.Alias).Msg("player removed")
			continue
		}
		players = append(players, p)
	}
	lobby.Players = players

	if len(lobby.Players) == 0 {
		m.log.Info().Str("code", lobby.Code).Msg("removing lobby, no connected players")
		delete(m.lobbies, lobby.Code)
		return
	}
	if wasCreator {
		lobby.Players[0].IsCreator = true
	}
	m.playerListingLocked(lobby)
}

// lobbyByConn maps a connection to its lobby, if any.
func (m *Manager) lobbyByConn(connID string) *Lobby {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conns[connID]
}

// present reports whether the lobby is still the live registry entry for its
// code. Timers and canonicalization results check this before mutating.
func (m *Manager) present(lobby *Lobby) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lobbies[lobby.Code] == lobby
}

// articleFromPath anchors a pathname on the configured article host.
func (m *Manager) articleFromPath(path string) *Article {
	return &Article{URL: "https://" + m.cfg.Host + path, Path: path}
}

// parseArticle accepts any absolute URL and keeps only its pathname,
// re-anchored on the configured host. Hosts and query strings supplied by
// clients are not trusted beyond that.
func (m *Manager) parseArticle(raw string) (*Article, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return m.articleFromPath(u.Path), nil
}

package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"time"
)

// Submit stores a destination candidate on the calling player and announces
// it to the lobby. Resubmitting silently overwrites the previous candidate.
func (m *Manager) Submit(conn Conn, rawURL string) error {
	lobby := m.lobbyByConn(conn.ID())
	if lobby == nil {
		return ErrNotAPlayer
	}
	candidate, err := m.parseArticle(rawURL)
	if err != nil {
		return fmt.Errorf("'%s' is not a valid URL", rawURL)
	}

	lobby.mu.Lock()
	defer lobby.mu.Unlock()

	player := lobby.playerByConnLocked(conn.ID())
	if player == nil {
		return ErrNotAPlayer
	}
	player.Submission = candidate
	m.broadcastLocked(lobby, fmt.Sprintf("SUBMIT %s %s", player.Alias, candidate.URL))
	return nil
}

// EndSubmission is the creator's "start the round" command. It resolves the
// round's source and destination, initializes every player's navigation tree,
// moves the lobby to PLAYING and starts the round timer.
//
// Resolving the source may await the random-article oracle; only this
// caller's command handling is suspended while that happens, and the lobby is
// re-validated once the answer arrives.
func (m *Manager) EndSubmission(ctx context.Context, conn Conn) error {
	lobby := m.lobbyByConn(conn.ID())
	if lobby == nil {
		return ErrNotAPlayer
	}

	lobby.mu.Lock()
	player := lobby.playerByConnLocked(conn.ID())
	if player == nil {
		lobby.mu.Unlock()
		return ErrNotAPlayer
	}
	if !player.IsCreator {
		lobby.mu.Unlock()
		return ErrNotCreator
	}
	if lobby.State.Stage != StageWaitingForPlayers {
		lobby.mu.Unlock()
		return ErrInvalidStage
	}
	if len(lobby.Players) < 2 {
		lobby.mu.Unlock()
		return ErrInsufficientPlayers
	}
	submissions := distinctSubmissionsLocked(lobby)
	lobby.mu.Unlock()

	source, destination, err := m.resolvePages(ctx, submissions)
	if err != nil {
		return err
	}

	// The oracle call ran unlocked; the lobby may have emptied, been torn
	// down, or already been started by a retry in the meantime.
	if !m.present(lobby) {
		return fmt.Errorf("lobby '%s': %w", lobby.Code, ErrLobbyNotFound)
	}

	lobby.mu.Lock()
	defer lobby.mu.Unlock()

	if lobby.State.Stage != StageWaitingForPlayers {
		return ErrInvalidStage
	}
	if len(lobby.Players) < 2 {
		return ErrInsufficientPlayers
	}

	now := time.Now()
	lobby.State.Source = source
	lobby.State.Destination = destination
	lobby.State.Stage = StagePlaying
	for _, p := range lobby.Players {
		p.Tree = newNode(source, now)
	}
	m.log.Info().
		Str("code", lobby.Code).
		Str("source", source.Path).
		Str("destination", destination.Path).
		Msg("round started")
	m.broadcastLocked(lobby, fmt.Sprintf("PLAYING %s %s", source.URL, destination.URL))

	go m.runTimer(lobby)
	return nil
}

// distinctSubmissionsLocked collects the distinct set of player submissions,
// keyed by pathname. Assumes lobby.mu is held.
func distinctSubmissionsLocked(lobby *Lobby) []*Article {
	var distinct []*Article
	seen := make(map[string]bool)
	for _, p := range lobby.Players {
		if p.Submission == nil || seen[p.Submission.Path] {
			continue
		}
		seen[p.Submission.Path] = true
		distinct = append(distinct, p.Submission)
	}
	return distinct
}

// resolvePages picks the round's source and destination. With two or more
// distinct submissions the race runs purely between submitted pages: the
// destination is drawn uniformly and the source uniformly from the rest, and
// the oracle is not consulted. Otherwise the source comes from the
// random-article oracle and the destination is the lone submission, or the
// fallback article when nobody submitted.
func (m *Manager) resolvePages(ctx context.Context, submissions []*Article) (source, destination *Article, err error) {
	if len(submissions) >= 2 {
		i := rand.Intn(len(submissions))
		destination = submissions[i]
		rest := make([]*Article, 0, len(submissions)-1)
		rest = append(rest, submissions[:i]...)
		rest = append(rest, submissions[i+1:]...)
		source = rest[rand.Intn(len(rest))]
		return source, destination, nil
	}

	raw, err := m.pages.RandomArticle(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not fetch a random source article: %w", err)
	}
	source, err = m.parseArticle(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("could not fetch a random source article: %w", err)
	}

	if len(submissions) == 1 {
		destination = submissions[0]
	} else {
		destination = m.articleFromPath(fallbackDestination)
	}
	return source, destination, nil
}

// runTimer drives the per-lobby round clock at one tick per second. The
// ticker goroutine is the only place a round can end, so cancellation happens
// exactly once no matter which end condition fires first.
func (m *Manager) runTimer(lobby *Lobby) {
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()
	for range ticker.C {
		if m.tickLobby(lobby) {
			return
		}
	}
}

// tickLobby advances the round clock once and reports whether the timer
// should stop. The end conditions are evaluated under the lobby lock,
// atomically with the decrement.
func (m *Manager) tickLobby(lobby *Lobby) (stop bool) {
	present := m.present(lobby)

	lobby.mu.Lock()
	defer lobby.mu.Unlock()

	if lobby.State.Stage != StagePlaying {
		return true
	}
	lobby.State.Timer--
	if lobby.State.Timer <= 0 || !present || len(lobby.Players) <= 1 {
		m.finishLocked(lobby)
		return true
	}
	m.broadcastLocked(lobby, fmt.Sprintf("TIMER %d", lobby.State.Timer))
	return false
}

// finishLocked ends the round and ships every player's full navigation tree,
// so clients can rank players (lowest click count, ties by earliest
// timestamp, unreached destination ineligible) and render the explored paths.
// Assumes lobby.mu is held.
func (m *Manager) finishLocked(lobby *Lobby) {
	lobby.State.Stage = StageFinished

	type entry struct {
		Alias string `json:"alias"`
		Tree  *Node  `json:"tree"`
	}
	entries := make([]entry, 0, len(lobby.Players))
	for _, p := range lobby.Players {
		entries = append(entries, entry{Alias: p.Alias, Tree: p.Tree})
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		m.log.Error().Err(err).Str("code", lobby.Code).Msg("could not marshal finish payload")
		return
	}
	m.log.Info().Str("code", lobby.Code).Msg("round finished")
	m.broadcastLocked(lobby, "FINISH "+string(payload))
}

// Visit records a navigation edge in the calling player's tree. The parent
// pathname may legitimately match several already-explored nodes; every match
// that does not yet have the visited page as a child receives it.
func (m *Manager) Visit(conn Conn, parentPath, visitedPath string) error {
	lobby := m.lobbyByConn(conn.ID())
	if lobby == nil {
		return ErrNotAPlayer
	}

	lobby.mu.Lock()

	player := lobby.playerByConnLocked(conn.ID())
	if player == nil {
		lobby.mu.Unlock()
		return ErrNotAPlayer
	}
	if player.Tree == nil {
		lobby.mu.Unlock()
		return ErrParentNotFound
	}
	parents := player.Tree.findAll(parentPath)
	if len(parents) == 0 {
		lobby.mu.Unlock()
		return ErrParentNotFound
	}

	now := time.Now()
	visited := m.articleFromPath(visitedPath)
	var added []*Node
	for _, parent := range parents {
		if parent.childByPath(visitedPath) != nil {
			continue
		}
		child := newNode(visited, now)
		parent.Children = append(parent.Children, child)
		added = append(added, child)
	}

	if len(added) > 0 {
		player.VisitCount++
		m.broadcastLocked(lobby, fmt.Sprintf("VISIT_COUNT %s %d", player.Alias, player.VisitCount))
	}

	if dest := lobby.State.Destination; dest != nil && visitedPath == dest.Path {
		count := shortestPath(player.Tree, dest.Path)
		if count != -1 && (player.Shortest.Count == -1 || count < player.Shortest.Count) {
			player.Shortest = ClickCount{Count: count, When: now}
			m.broadcastLocked(lobby, fmt.Sprintf("NEW_CLICK_COUNT %s %d %d", player.Alias, count, now.UnixMilli()))
		}
	}

	tree := player.Tree
	lobby.mu.Unlock()

	if len(added) > 0 {
		go m.canonicalize(lobby, conn.ID(), tree, added)
	}
	return nil
}

// canonicalize repairs redirect-induced identity drift after the fact: if the
// visited page's canonical URL differs from what the client reported, every
// node added by that visit is rewritten to the canonical identity. It runs
// off the command path and silently drops its result when the lobby, player
// or tree it saw is gone by the time the lookup answers.
func (m *Manager) canonicalize(lobby *Lobby, connID string, tree *Node, added []*Node) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	raw, err := m.pages.CanonicalArticle(ctx, added[0].path)
	if err != nil {
		m.log.Debug().Err(err).Str("pathname", added[0].path).Msg("canonicalization lookup failed")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host != m.cfg.Host || u.Path == added[0].path {
		return
	}
	canonical := &Article{URL: raw, Path: u.Path}

	if !m.present(lobby) {
		return
	}
	lobby.mu.Lock()
	defer lobby.mu.Unlock()

	player := lobby.playerByConnLocked(connID)
	if player == nil || player.Tree != tree {
		return
	}
	for _, n := range added {
		n.Article = canonical.URL
		n.path = canonical.Path
	}
}

// Reset returns a finished lobby to the waiting stage so the same roster can
// race again. Aliases, connections and the creator flag survive; everything
// round-scoped is cleared.
func (m *Manager) Reset(conn Conn) error {
	lobby := m.lobbyByConn(conn.ID())
	if lobby == nil {
		return ErrNotAPlayer
	}

	lobby.mu.Lock()
	defer lobby.mu.Unlock()

	player := lobby.playerByConnLocked(conn.ID())
	if player == nil {
		return ErrNotAPlayer
	}
	if !player.IsCreator {
		return ErrNotCreator
	}
	if lobby.State.Stage != StageFinished {
		return ErrInvalidStage
	}

	now := time.Now()
	lobby.State = State{
		Stage: StageWaitingForPlayers,
		Timer: lobby.RoundTimeLimit,
	}
	for _, p := range lobby.Players {
		p.Submission = nil
		p.Tree = nil
		p.VisitCount = 0
		p.Shortest = ClickCount{Count: -1, When: now}
	}
	m.playerListingLocked(lobby)
	return nil
}

package game

import (
	"fmt"
	"strings"
)

// Broadcast sends a message verbatim to every player currently connected to
// the lobby with the given code. A missing lobby is not an error; broadcasts
// legitimately race with lobby teardown.
func (m *Manager) Broadcast(code, message string) {
	m.mu.RLock()
	lobby := m.lobbies[code]
	m.mu.RUnlock()
	if lobby == nil {
		m.log.Warn().Str("code", code).Msg("cannot broadcast to nonexistent lobby")
		return
	}
	lobby.mu.Lock()
	defer lobby.mu.Unlock()
	m.broadcastLocked(lobby, message)
}

// broadcastLocked assumes lobby.mu is held.
func (m *Manager) broadcastLocked(lobby *Lobby, message string) {
	m.log.Debug().Str("code", lobby.Code).Str("message", message).Msg("broadcasting")
	for _, p := range lobby.Players {
		p.Conn.Send(message)
	}
}

// playerListingLocked broadcasts the roster. The same list renders
// differently per recipient: '~' marks the recipient when they are the
// creator, '!' the creator when they are someone else, '@' the recipient
// otherwise. Assumes lobby.mu is held.
func (m *Manager) playerListingLocked(lobby *Lobby) {
	for _, recipient := range lobby.Players {
		aliases := make([]string, 0, len(lobby.Players))
		for _, p := range lobby.Players {
			self := p.Conn.ID() == recipient.Conn.ID()
			switch {
			case p.IsCreator && self:
				aliases = append(aliases, "~"+p.Alias)
			case p.IsCreator:
				aliases = append(aliases, "!"+p.Alias)
			case self:
				aliases = append(aliases, "@"+p.Alias)
			default:
				aliases = append(aliases, p.Alias)
			}
		}
		recipient.Conn.Send(fmt.Sprintf("PLAYERS %s %d %s", lobby.Code, lobby.State.Timer, strings.Join(aliases, ",")))
	}
}

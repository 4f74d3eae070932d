package game

import "errors"

// Error text doubles as the reason shown to the offending player, so it is
// phrased for humans.
var (
	ErrAlreadyInLobby      = errors.New("connection already belongs to a lobby")
	ErrLobbyNotFound       = errors.New("lobby does not exist")
	ErrDuplicateAlias      = errors.New("a player with the same alias already exists in the lobby")
	ErrLobbyFull           = errors.New("lobby is at maximum player limit")
	ErrGameInProgress      = errors.New("lobby has a game already in progress")
	ErrNotAPlayer          = errors.New("cannot do this without being a player in a lobby first")
	ErrNotCreator          = errors.New("only the lobby creator can do this")
	ErrInsufficientPlayers = errors.New("cannot start a game without at least two players")
	ErrInvalidStage        = errors.New("operation is not allowed in the lobby's current stage")
	ErrParentNotFound      = errors.New("could not find parent node in the existing navigation tree")
	ErrCodesExhausted      = errors.New("exceeded attempts to generate a unique lobby code; there may be too many simultaneous games in progress")
	ErrBadAlias            = errors.New("alias must be 1 to 12 alphanumeric characters")
	ErrBadRoundTime        = errors.New("round time limit must be between 5 and 1800 seconds")
)

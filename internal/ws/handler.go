package ws

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/clickstox/clickstox/internal/game"
)

const commandTimeout = 15 * time.Second

type Handler struct {
	game *game.Manager
	host string // article host submissions must live on
	log  zerolog.Logger

	upgrader websocket.Upgrader
}

func NewHandler(g *game.Manager, host string, log zerolog.Logger) *Handler {
	return &Handler{
		game: g,
		host: host,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The extension connects from wiki article origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and runs the connection's read loop. One command
// is handled to completion before the next is read, which is what keeps lobby
// mutations serialized per connection.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := newClient(conn, h.log)
	h.log.Debug().Str("conn", client.id).Str("remote", c.Request.RemoteAddr).Msg("client connected")

	go client.writePump()
	h.readPump(client)
}

func (h *Handler) readPump(c *client) {
	// Read errors and clean closes both land here, and removal must happen
	// once even if the socket reports both.
	defer c.discOnce.Do(func() {
		h.log.Debug().Str("conn", c.id).Msg("client disconnected")
		h.game.Disconnect(c)
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		h.dispatch(c, string(data))
	}
}

// dispatch parses one inbound command line and applies it. Validation
// failures and core errors alike answer the offender only, as an ERROR line.
func (h *Handler) dispatch(c *client, line string) {
	h.log.Debug().Str("conn", c.id).Str("message", line).Msg("received")
	fields := strings.Split(line, " ")

	var err error
	switch fields[0] {
	case "CREATE":
		var limit int
		if limit, err = h.validateCreate(fields); err == nil {
			_, err = h.game.CreateLobby(c, fields[1], limit)
		}
	case "JOIN":
		if err = h.validateJoin(fields); err == nil {
			err = h.game.Join(c, fields[1], fields[2])
		}
	case "SUBMIT":
		if err = h.validateSubmit(fields); err == nil {
			err = h.game.Submit(c, fields[1])
		}
	case "END_SUBMISSION":
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		err = h.game.EndSubmission(ctx, c)
		cancel()
	case "VISIT":
		if err = h.validateVisit(fields); err == nil {
			err = h.game.Visit(c, fields[1], fields[2])
		}
	case "RESET":
		err = h.game.Reset(c)
	default:
		// Unknown commands are dropped, same as malformed frames.
		return
	}

	if err != nil {
		h.log.Warn().Str("conn", c.id).Str("command", fields[0]).Err(err).Msg("command rejected")
		c.Send("ERROR " + err.Error())
	}
}

func (h *Handler) validateCreate(fields []string) (int, error) {
	if len(fields) != 3 {
		return 0, errInvalidFormat
	}
	if err := validateAlias(fields[1]); err != nil {
		return 0, err
	}
	limit, err := strconv.Atoi(fields[2])
	if err != nil || limit < game.MinRoundTime || limit > game.MaxRoundTime {
		return 0, errBadRoundTime
	}
	return limit, nil
}

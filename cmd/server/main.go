package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/clickstox/clickstox/internal/config"
	"github.com/clickstox/clickstox/internal/game"
	"github.com/clickstox/clickstox/internal/wiki"
	"github.com/clickstox/clickstox/internal/ws"
)

const version = "v1.1.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`ClicksToX - Race your friends to an article, one link at a time

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 9980 or PORT env var)

Environment Variables:
  PORT                Port to listen on (default: 9980)
  LOBBY_PLAYER_LIMIT  Maximum players per lobby (default: 10)
  WIKIPEDIA_HOST      Article host for validation and lookups (default: en.wikipedia.org)
  LOG_LEVEL           Log level: trace, debug, info, warn, error (default: info)

The browser extension connects to ws://<host>:<port>/ws.
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("ClicksToX %s\n", version)
		return
	}

	cfg := config.FromEnv()

	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// Gin setup with custom logger (skip websocket noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/ws") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	pages := wiki.New(cfg.WikipediaHost)
	manager := game.NewManager(game.Config{
		PlayerLimit: cfg.LobbyPlayerLimit,
		Host:        cfg.WikipediaHost,
	}, pages, zerologlog.With().Str("component", "game").Logger())

	handler := ws.NewHandler(manager, cfg.WikipediaHost, zerologlog.With().Str("component", "ws").Logger())
	r.GET("/ws", handler.Serve)

	log.Printf("ClicksToX server is running on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port             string
	LobbyPlayerLimit int
	WikipediaHost    string
	LogLevel         string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "9980")
	c.LobbyPlayerLimit = getint("LOBBY_PLAYER_LIMIT", 10)
	c.WikipediaHost = getenv("WIKIPEDIA_HOST", "en.wikipedia.org")
	c.LogLevel = getenv("LOG_LEVEL", "info")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/devserver"
	"github.com/parleyhq/parley/internal/infrastructure/openai"
	"github.com/parleyhq/parley/internal/infrastructure/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(config.GetLogLevel())

	store := devserver.NewStore(redis.NewService())
	replier := devserver.NewReplier(openai.NewService())
	server := devserver.NewServer(store, replier)

	addr := config.GetListenAddr()
	log.Info().Str("addr", addr).Msg("Dev server starting")
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatal().Err(err).Msg("ListenAndServe error")
	}
}

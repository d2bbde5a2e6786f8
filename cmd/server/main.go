package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"gymtrack/internal/auth"
	"gymtrack/internal/config"
	"gymtrack/internal/repository"
	"gymtrack/internal/storage"
	"gymtrack/internal/web"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.Dev {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		log.Fatal().Err(err).Msg("storage connect")
	}
	defer func() {
		_ = db.Client().Disconnect(context.Background())
	}()
	if err := storage.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("storage indexes")
	}

	sessions := auth.NewSessions([]byte(cfg.SessionSecret), !cfg.Dev)
	server := web.New(log, sessions,
		repository.NewMongoUsers(db),
		repository.NewMongoRoutines(db),
		repository.NewMongoLogs(db),
		[]byte(cfg.CSRFKey), cfg.Dev)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		log.Info().Msg("server closed")
	} else if err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

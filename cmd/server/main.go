package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dfryer1193/alttext/internal/auth"
	"github.com/dfryer1193/alttext/internal/config"
	"github.com/dfryer1193/alttext/internal/logging"
	"github.com/dfryer1193/alttext/internal/rest"
	"github.com/dfryer1193/alttext/media/application"
	"github.com/dfryer1193/alttext/media/persistence"
	"github.com/dfryer1193/alttext/shared/db/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	shutdownTimeout = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "optional config file (json, yaml or toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogPretty); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	if err := cfg.RequireSecret(); err != nil {
		log.Fatal().Err(err).Msg("Missing nonce secret")
	}

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.DBPath})
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to connect to database")
	}
	defer database.Close()

	store := persistence.NewMediaStore(database.DB())
	users := persistence.NewUserRepository(database.DB())

	authorizer, err := auth.NewNonceAuthorizer(cfg.NonceSecret, users)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create authorizer")
	}

	if cfg.UploadsDir != "" {
		if _, err := application.NewImporter(store).ImportDir(context.Background(), cfg.UploadsDir); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.UploadsDir).Msg("Failed to import uploads")
		}
	}

	updater := application.NewAltTextUpdater(store, authorizer)

	gin.SetMode(gin.ReleaseMode)
	router := rest.NewRouter(rest.NewAltTextHandler(updater))

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"aoe2-overlay/internal/config"
	"aoe2-overlay/internal/constants"
	fxmodules "aoe2-overlay/internal/fx"
	"aoe2-overlay/internal/logger"
	"aoe2-overlay/internal/middleware"
	"aoe2-overlay/internal/preload"
	"aoe2-overlay/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	overlay *server.OverlayServer,
	preloader *preload.Preloader,
	cfg *config.Config,
	db *sql.DB,
	baseLogger zerolog.Logger,
) {
	log := logger.WithLevel(baseLogger, cfg.LogLevel)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(log)(c.Handler(overlay.Routes()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler,
	}

	preloadCtx, stopPreload := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go preloader.Run(preloadCtx)
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			stopPreload()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if db != nil {
				if err := db.Close(); err != nil {
					log.Warn().Err(err).Msg("error closing archive database")
				}
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

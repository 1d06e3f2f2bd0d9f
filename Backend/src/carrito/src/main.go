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
	"github.com/rs/zerolog/log"
)

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := LoadConfig()
	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("db", cfg.DBPath).
		Str("rabbit", cfg.RabbitURL).
		Str("catalogo", cfg.CatalogoBaseURL).
		Msg("starting carrito service")

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET vacío: los tokens no van a verificar")
	}

	// Store
	db, err := openSQLite(cfg.DBPath)
	must(err)
	defer db.Close()
	must(migrate(context.Background(), db))
	store := NewSQLiteStore(db)

	// Resolver de catálogo remoto (opcional: sin URL queda solo el espejo)
	var catalogo CatalogoResolver
	if cfg.CatalogoBaseURL != "" {
		cliente, err := NewCatalogoClient(cfg.CatalogoBaseURL)
		must(err)
		catalogo = cliente
	}

	service := NewCarritoService(store, catalogo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Rabbit
	if cfg.RabbitURL != "" {
		rabbit, err := NewRabbit(cfg.RabbitURL, cfg.RabbitExchange, service)
		must(err)
		defer rabbit.Close()
		must(rabbit.StartConsumer(ctx))
		log.Info().Msg("rabbit consumer started")
	}

	// HTTP
	srv := NewServer(service, []byte(cfg.JWTSecret))
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Handler(cfg.CORSOrigin)}

	// Señales para apagado limpio
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		log.Warn().Msg("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownGrace)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		cancel()
	}()

	log.Info().Msg("HTTP listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

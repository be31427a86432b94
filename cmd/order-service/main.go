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

	"github.com/p2pmarket/order-service/internal/config"
	"github.com/p2pmarket/order-service/internal/contact"
	"github.com/p2pmarket/order-service/internal/kv"
	"github.com/p2pmarket/order-service/internal/order"
	"github.com/p2pmarket/order-service/internal/transport"
	"github.com/p2pmarket/order-service/internal/wallet"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "order-service").Logger()

	log.Info().Msg("Order service starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	var db kv.Store
	switch cfg.Store.Backend {
	case "postgres":
		db, err = kv.NewPostgresStore(context.Background(), cfg.Store.Postgres)
	default:
		db, err = kv.NewLevelDBStore(cfg.Store.LevelDBPath)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open key-value store")
	}
	defer db.Close()

	walletClient := wallet.NewRPCClient(cfg.Wallet.RPCURL)
	directory := contact.NewHTTPDirectory(cfg.Contacts.DirectoryURL)

	store := order.NewStore(db)
	svc := order.NewService(store, walletClient, cfg.Wallet.Name, cfg.Wallet.Password)
	guard := order.NewGuard(store, directory, walletClient)

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: transport.NewRouter(store, svc, guard),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	log.Info().Str("port", cfg.App.Port).Msg("HTTP server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ronagung/wedding-registry/internal/infrastructure/config"
	mongodb "github.com/ronagung/wedding-registry/internal/infrastructure/db/mongo"
	"github.com/ronagung/wedding-registry/pkg/logger"
)

// app holds what every command needs: configuration, logging and MongoDB.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *mongo.Client
	db     *mongo.Database

	counters *mongodb.Counters
	accounts *mongodb.AccountRepository
	sessions *mongodb.SessionRepository
	gifts    *mongodb.GiftRepository
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "registry",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Options{
		URI:             cfg.Mongo.URI,
		Database:        cfg.Mongo.Database,
		ServerSelection: cfg.Mongo.ServerSelection,
	})
	if err != nil {
		return nil, err
	}

	counters := mongodb.NewCounters(db)
	a := &app{
		cfg:      cfg,
		log:      log,
		client:   client,
		db:       db,
		counters: counters,
		accounts: mongodb.NewAccountRepository(db, counters),
		sessions: mongodb.NewSessionRepository(db),
		gifts:    mongodb.NewGiftRepository(db, counters),
	}

	if err := mongodb.EnsureIndexes(ctx, a.accounts, a.sessions, a.gifts); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.client.Disconnect(ctx); err != nil {
		a.log.Warn().Err(err).Msg("mongo disconnect failed")
	}
}

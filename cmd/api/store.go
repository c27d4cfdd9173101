package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/directory"
	dirrepo "github.com/ovaphlow/pitchfork/service-auth-go/internal/directory/repo"
	"github.com/ovaphlow/pitchfork/service-auth-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-auth-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-auth-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-auth-go/pkg/utilities"
)

// stores bundles the repos for the configured driver.
type stores struct {
	users     user.Store
	directory directory.Store
	migrate   func(ctx context.Context) error
	ping      func(ctx context.Context) error
	close     func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg config.Config, ids *utilities.IDGenerator, logger *zap.SugaredLogger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, database.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.DatabaseName,
			Timeout:  5 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		logger.Infow("connected to mongo", "database", cfg.DatabaseName)
		users := userrepo.NewMongoUserRepo(db)
		dir := dirrepo.NewMongoDirectoryRepo(db)
		return &stores{
			users:     users,
			directory: dir,
			migrate: func(ctx context.Context) error {
				if err := users.EnsureIndexes(ctx); err != nil {
					return fmt.Errorf("users indexes: %w", err)
				}
				if err := dir.EnsureIndexes(ctx); err != nil {
					return fmt.Errorf("directory indexes: %w", err)
				}
				return nil
			},
			ping:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: client.Disconnect,
		}, nil

	case config.DriverPostgres:
		db, err := database.Connect(database.Config{DSN: cfg.DatabaseURL, TimeZone: "UTC"})
		if err != nil {
			return nil, err
		}
		logger.Infow("connected to postgres")
		users := userrepo.NewUserRepo(db, ids)
		dir := dirrepo.NewDirectoryRepo(db, ids)
		return &stores{
			users:     users,
			directory: dir,
			migrate: func(ctx context.Context) error {
				if err := users.EnsureTable(ctx); err != nil {
					return fmt.Errorf("users table: %w", err)
				}
				if err := dir.EnsureTable(ctx); err != nil {
					return fmt.Errorf("directory table: %w", err)
				}
				return nil
			},
			ping:  db.PingContext,
			close: func(context.Context) error { return db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

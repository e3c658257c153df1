// Package db selects and opens the storage backend named by the
// configuration.
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
	"github.com/motogear/resource-api/internal/infrastructure/config"
	"github.com/motogear/resource-api/internal/infrastructure/db/jsonfile"
	"github.com/motogear/resource-api/internal/infrastructure/db/memory"
	mongostore "github.com/motogear/resource-api/internal/infrastructure/db/mongo"
	"github.com/motogear/resource-api/internal/infrastructure/db/postgres"
	"github.com/motogear/resource-api/internal/infrastructure/http/handlers"
)

// Stores bundles the repositories of one backend.
type Stores struct {
	Users     ports.UserRepository
	Resources ports.ResourceRepository
	Activity  ports.ActivityRepository
	// Health lists the backend's readiness checks.
	Health []handlers.Dependency

	closers []func(context.Context) error
}

// Close releases backend connections.
func (s *Stores) Close(ctx context.Context) error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open connects the backend selected by cfg.StoreBackend and prepares its
// schema for kinds.
func Open(ctx context.Context, cfg *config.Config, kinds []domain.ResourceKind, log zerolog.Logger) (*Stores, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &Stores{
			Users:     memory.NewUserRepository(),
			Resources: memory.NewResourceRepository(),
			Activity:  memory.NewActivityRepository(memory.DefaultActivityCapacity),
		}, nil

	case config.BackendFile:
		users, err := jsonfile.NewUserRepository(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		resources, err := jsonfile.NewResourceRepository(cfg.DataDir, kinds)
		if err != nil {
			return nil, err
		}
		log.Info().Str("dir", cfg.DataDir).Msg("using json file storage")
		return &Stores{
			Users:     users,
			Resources: resources,
			Activity:  memory.NewActivityRepository(memory.DefaultActivityCapacity),
		}, nil

	case config.BackendMongo:
		return openMongo(ctx, cfg, kinds, log)

	case config.BackendPostgres:
		return openPostgres(ctx, cfg, log)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func openMongo(ctx context.Context, cfg *config.Config, kinds []domain.ResourceKind, log zerolog.Logger) (*Stores, error) {
	client, database, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	s := &Stores{
		Health:  []handlers.Dependency{{Name: "mongo", Ping: mongostore.Pinger(client)}},
		closers: []func(context.Context) error{client.Disconnect},
	}

	users := mongostore.NewUserRepository(database)
	resources := mongostore.NewResourceRepository(database)
	activity := mongostore.NewActivityRepository(database)

	if err := users.EnsureIndexes(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	if err := resources.EnsureIndexes(ctx, kinds); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	if err := activity.EnsureIndexes(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	s.Users, s.Resources, s.Activity = users, resources, activity
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
	return s, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	pg, err := postgres.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, err
	}

	log.Info().Msg("connected to postgres")
	return &Stores{
		Users:     postgres.NewUserRepository(pg),
		Resources: postgres.NewResourceRepository(pg),
		Activity:  postgres.NewActivityRepository(pg),
		Health:    []handlers.Dependency{{Name: "postgres", Ping: pg.Ping}},
		closers: []func(context.Context) error{func(context.Context) error {
			pg.Close()
			return nil
		}},
	}, nil
}

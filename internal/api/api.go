// Package api assembles repositories, services and handlers for the storage
// driver selected in the configuration.
package api

import (
	"context"
	"fmt"

	accountshandler "turfbook/internal/accounts/handler"
	accountsrepo "turfbook/internal/accounts/repository"
	accountsservice "turfbook/internal/accounts/service"
	accountsvalidator "turfbook/internal/accounts/validator"
	bookingshandler "turfbook/internal/bookings/handler"
	bookingsrepo "turfbook/internal/bookings/repository"
	bookingsservice "turfbook/internal/bookings/service"
	bookingsvalidator "turfbook/internal/bookings/validator"
	"turfbook/internal/health"
	turfshandler "turfbook/internal/turfs/handler"
	turfsrepo "turfbook/internal/turfs/repository"
	turfsservice "turfbook/internal/turfs/service"
	turfsvalidator "turfbook/internal/turfs/validator"
	"turfbook/pkg/config"
	"turfbook/pkg/contracts"
	httputil "turfbook/pkg/http"
	"turfbook/pkg/model"
	"turfbook/pkg/token"
)

// API is the assembled service: the health handler, the business handlers
// and the background resources to release on shutdown.
type API struct {
	Health   contracts.Handler
	Handlers []contracts.Handler
	closers  []func()
}

func (a *API) Close() {
	for _, fn := range a.closers {
		fn()
	}
}

type repositories struct {
	owners   accountsrepo.PrincipalRepository
	users    accountsrepo.PrincipalRepository
	turfs    turfsrepo.TurfRepository
	bookings bookingsrepo.BookingRepository
	check    health.Check
}

// New wires the service. Datastore, Redis and Kafka clients must already be
// connected on cfg.Client for the drivers that need them.
func New(cfg *config.Config, opts ...accountsservice.Option) (*API, error) {
	api := &API{}

	tokens, err := token.NewManager(token.Config{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshTTL:    cfg.RefreshTokenExpiry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	var revocations token.RevocationStore
	if cfg.Client.Redis != nil {
		revocations = token.NewRedisRevocationStore(cfg.Client.Redis)
		cfg.Log.Info("Access token revocations stored in Redis")
	} else {
		store := token.NewMemoryRevocationStore(cfg.AccessTokenExpiry)
		api.closers = append(api.closers, store.Stop)
		revocations = store
		cfg.Log.Info("Access token revocations stored in memory")
	}

	repos, err := newRepositories(cfg)
	if err != nil {
		return nil, err
	}

	var events bookingsservice.EventPublisher
	if cfg.Client.Producer != nil {
		events = cfg.Client.Producer
	}

	principalValidator := accountsvalidator.NewPrincipalValidator(cfg.Log)
	owners := accountsservice.NewPrincipalService(model.KindOwner, repos.owners, principalValidator, tokens, revocations, cfg, opts...)
	users := accountsservice.NewPrincipalService(model.KindUser, repos.users, principalValidator, tokens, revocations, cfg, opts...)
	turfs := turfsservice.NewTurfService(repos.turfs, repos.bookings, turfsvalidator.NewTurfValidator(cfg.Log), cfg)
	bookings := bookingsservice.NewBookingService(repos.bookings, turfs, bookingsvalidator.NewBookingValidator(cfg.Log), events, cfg)

	cookies := httputil.CookieOptions{Secure: cfg.CookieSecure}
	api.Health = health.NewHealthHandler(cfg.StorageDriver, repos.check, cfg.Log)
	api.Handlers = []contracts.Handler{
		accountshandler.NewPrincipalHandler(owners, cookies, cfg.Log),
		accountshandler.NewPrincipalHandler(users, cookies, cfg.Log),
		turfshandler.NewTurfHandler(turfs, owners, cfg.Log),
		bookingshandler.NewBookingHandler(bookings, users, cfg.Log),
	}

	cfg.Log.Info("API wired",
		"storage_driver", cfg.StorageDriver,
		"booking_events", events != nil,
	)
	return api, nil
}

func newRepositories(cfg *config.Config) (*repositories, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db := cfg.Client.Postgres
		if db == nil {
			return nil, fmt.Errorf("postgres client is not connected")
		}
		return &repositories{
			owners:   accountsrepo.NewPostgresPrincipalRepository(cfg, db, model.KindOwner),
			users:    accountsrepo.NewPostgresPrincipalRepository(cfg, db, model.KindUser),
			turfs:    turfsrepo.NewPostgresTurfRepository(cfg, db),
			bookings: bookingsrepo.NewPostgresBookingRepository(cfg, db),
			check:    db.PingContext,
		}, nil

	case config.DriverMongo:
		if cfg.Client.Mongo == nil {
			return nil, fmt.Errorf("mongo client is not connected")
		}
		database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
		return &repositories{
			owners:   accountsrepo.NewMongoPrincipalRepository(cfg, database, model.KindOwner),
			users:    accountsrepo.NewMongoPrincipalRepository(cfg, database, model.KindUser),
			turfs:    turfsrepo.NewMongoTurfRepository(cfg, database),
			bookings: bookingsrepo.NewMongoBookingRepository(cfg, database),
			check: func(ctx context.Context) error {
				return cfg.Client.Mongo.Ping(ctx, nil)
			},
		}, nil

	case config.DriverMemory:
		turfs := turfsrepo.NewMemoryTurfRepository()
		return &repositories{
			owners:   accountsrepo.NewMemoryPrincipalRepository(model.KindOwner),
			users:    accountsrepo.NewMemoryPrincipalRepository(model.KindUser),
			turfs:    turfs,
			bookings: bookingsrepo.NewMemoryBookingRepository(turfs),
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

package main // Entry point package

import (
	"context"
	"errors"
	"log" // Logging library
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/post-service/internal/config"     // Internal config loader
	"github.com/iliyamo/post-service/internal/database"   // Store connections
	"github.com/iliyamo/post-service/internal/handler"    // HTTP handlers
	"github.com/iliyamo/post-service/internal/repository" // Post stores
	"github.com/iliyamo/post-service/internal/router"     // Internal router setup
	"github.com/iliyamo/post-service/internal/service"    // Event publishing
)

const shutdownTimeout = 10 * time.Second

// closeFunc releases whatever connection pool backs the store.
type closeFunc func(context.Context) error

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("config: .env: %v", err)
	}
	cfg := config.Load() // Load environment config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg)

	var events service.EventPublisher = service.NopPublisher{}
	if ev := config.LoadEventsConfig(); ev.Enabled {
		events = service.NewAMQPPublisher(ev.URL, ev.Queue)
		log.Printf("events: publishing to queue %s", ev.Queue)
	}

	opts := router.Options{
		Redis:     config.NewRedisClient(config.LoadRedisConfig()),
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	}

	e := echo.New() // Create Echo instance
	router.Setup(e, opts)
	router.RegisterRoutes(e, &handler.HealthHandler{Store: store})
	router.RegisterPosts(e, handler.NewPostHandler(store, events), opts)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)

	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err) // Log and exit if server fails
		}
	case <-ctx.Done():
		log.Printf("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if opts.Redis != nil {
		_ = opts.Redis.Close()
	}
	if err := closeStore(shutdownCtx); err != nil {
		log.Printf("store disconnect: %v", err)
	}
}

// openStore connects the configured backend.  A connection failure is not
// fatal: the server keeps serving and every post route answers 503 until it
// is restarted against a reachable store.
func openStore(ctx context.Context, cfg config.Config) (repository.PostStore, closeFunc) {
	noop := func(context.Context) error { return nil }

	switch cfg.StoreDriver {
	case config.DriverMySQL:
		dsn := database.MySQLDSN(cfg.MySQLUser, cfg.MySQLPass, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLName)
		db, err := database.OpenMySQL(ctx, dsn, cfg.DBTimeout)
		if err != nil {
			log.Printf("mysql: %v", err)
			return repository.UnavailablePostStore{Cause: err}, noop
		}
		repo := repository.NewMySQLPostRepo(db)
		schemaCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
		defer cancel()
		if err := repo.EnsureSchema(schemaCtx); err != nil {
			log.Printf("mysql: ensure schema: %v", err)
			_ = db.Close()
			return repository.UnavailablePostStore{Cause: err}, noop
		}
		log.Printf("mysql: connected to %s:%s/%s", cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLName)
		return repo, func(context.Context) error { return db.Close() }
	default:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.DBTimeout)
		if err != nil {
			log.Printf("mongo: %v", err)
			return repository.UnavailablePostStore{Cause: err}, noop
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		log.Printf("mongo: using %s.%s", cfg.MongoDatabase, cfg.MongoCollection)
		return repository.NewMongoPostRepo(coll), client.Disconnect
	}
}

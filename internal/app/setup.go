// Package app contains the application setup for the StoreHub service.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/storehub/storehub/internal/config"
	linkcache "github.com/storehub/storehub/internal/link/cache"
	linkrepo "github.com/storehub/storehub/internal/link/repo"
	linkservice "github.com/storehub/storehub/internal/link/service"
	linkrest "github.com/storehub/storehub/internal/link/transport/rest"
	productrepo "github.com/storehub/storehub/internal/product/repo"
	productservice "github.com/storehub/storehub/internal/product/service"
	productrest "github.com/storehub/storehub/internal/product/transport/rest"
	storerepo "github.com/storehub/storehub/internal/store/repo"
	storeservice "github.com/storehub/storehub/internal/store/service"
	storerest "github.com/storehub/storehub/internal/store/transport/rest"
	userrepo "github.com/storehub/storehub/internal/user/repo"
	userservice "github.com/storehub/storehub/internal/user/service"
	userrest "github.com/storehub/storehub/internal/user/transport/rest"
	"github.com/storehub/storehub/pkg/auth"
	"github.com/storehub/storehub/pkg/server"
	"github.com/storehub/storehub/pkg/web"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	StoreService   storeservice.StoreService
	ProductService productservice.ProductService
	UserService    userservice.UserService
	LinkService    linkservice.LinkService
	Tokens         *auth.Manager
	Responder      *web.Responder
	Logger         *slog.Logger
}

// SetupDependencies wires repositories, services and shared helpers.
// The redis client may be nil, in which case link visits skip the cache.
func SetupDependencies(dbPool *pgxpool.Pool, redisClient *redis.Client, cfg *config.Config, logger *slog.Logger) *Dependencies {
	stores := storerepo.NewPgRepository(dbPool)
	products := productrepo.NewPgRepository(dbPool)
	users := userrepo.NewPgRepository(dbPool)
	links := linkrepo.NewPgRepository(dbPool)

	var cache *linkcache.Cache
	if redisClient != nil {
		cache = linkcache.New(redisClient, cfg.Redis.TTL, logger)
	}

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)

	return &Dependencies{
		StoreService:   storeservice.NewService(stores, products),
		ProductService: productservice.NewService(products, stores),
		UserService:    userservice.NewService(users, tokens),
		LinkService:    linkservice.NewService(links, cache),
		Tokens:         tokens,
		Responder:      web.NewResponder(logger, cfg.App.IsDev()),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP router and routes for the application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	authMW := auth.Middleware(deps.Tokens, deps.Responder)

	storeHandler := storerest.NewHandler(deps.StoreService, deps.Responder, deps.Logger)
	storeHandler.RegisterRoutes(mux)

	productHandler := productrest.NewHandler(deps.ProductService, deps.Responder, deps.Logger)
	productHandler.RegisterRoutes(mux)

	userHandler := userrest.NewHandler(deps.UserService, deps.Responder, deps.Logger)
	userHandler.RegisterRoutes(mux, authMW)

	linkHandler := linkrest.NewHandler(deps.LinkService, deps.Responder, deps.Logger)
	linkHandler.RegisterRoutes(mux, authMW)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// SetupHttpServer creates and configures an HTTP server for the application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupRedis creates a Redis client and verifies connectivity, or returns nil
// when caching is disabled.
func SetupRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return client, nil
}

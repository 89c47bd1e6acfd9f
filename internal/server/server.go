package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/nonncal/ono-tebe-nado/internal/auctionapi"
	"github.com/nonncal/ono-tebe-nado/internal/cache"
	"github.com/nonncal/ono-tebe-nado/internal/db"
	"github.com/nonncal/ono-tebe-nado/internal/handlers"
	"github.com/nonncal/ono-tebe-nado/internal/middleware"
	"github.com/nonncal/ono-tebe-nado/internal/repository"
	"github.com/nonncal/ono-tebe-nado/internal/service"
	"github.com/nonncal/ono-tebe-nado/internal/session"
	"github.com/nonncal/ono-tebe-nado/pkg/config"
	"github.com/nonncal/ono-tebe-nado/pkg/logger"
	"github.com/nonncal/ono-tebe-nado/pkg/utils"
)

type Server struct {
	HTTPServer *http.Server
	Storefront *service.Storefront
	Sessions   *session.Store
	Logger     *logger.Logger

	cache     cache.Cacher
	pool      *pgxpool.Pool
	apiClient *auctionapi.Client
}

func New() *Server {
	mux := chi.NewMux()
	log := logger.NewLogger()
	host := utils.GetEnv("SERVER_HOST", "0.0.0.0")
	port := utils.GetEnv("SERVER_PORT", "8080")

	serverAddr := fmt.Sprintf("%s:%s", host, port)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serv := &Server{
		Logger: log,
		HTTPServer: &http.Server{
			Addr:        serverAddr,
			Handler:     mux,
			ReadTimeout: 30 * time.Second,
			// The SSE stream writes for as long as the browser listens, so
			// no server-wide write timeout here.
		},
	}

	source := serv.newCatalogSource(ctx)

	if addr := utils.GetEnv("REDIS_ADDR", ""); addr != "" {
		redisCache, err := cache.NewRedisClient(ctx)
		if err != nil {
			log.Fatal("[CACHE] connection failed -> " + err.Error())
		}
		serv.cache = redisCache
		log.Info("[CACHE] connected")
	}

	sessionTTL := utils.GetDurationEnv("SESSION_TTL", config.DefaultSessionTTL)
	serv.Sessions = session.NewStore(sessionTTL)

	storefront, err := service.NewStorefront(source, serv.cache, log)
	if err != nil {
		log.Fatal("[SERVICE] failed to initialize -> " + err.Error())
	}
	serv.Storefront = storefront

	lotHandler, err := handlers.NewLotHandler(storefront)
	if err != nil {
		log.Fatal("[LOT HANDLER] failed to initialize -> " + err.Error())
	}
	orderHandler, err := handlers.NewOrderHandler(storefront)
	if err != nil {
		log.Fatal("[ORDER HANDLER] failed to initialize -> " + err.Error())
	}
	eventHandler, err := handlers.NewEventHandler(log)
	if err != nil {
		log.Fatal("[EVENT HANDLER] failed to initialize -> " + err.Error())
	}

	mux.Use(chimiddleware.Logger)
	mux.Use(chimiddleware.Recoverer)
	mux.Use(middleware.Session(serv.Sessions))

	serv.CommonRoutes(mux)
	serv.LotRoutes(mux, lotHandler, eventHandler)
	serv.OrderRoutes(mux, orderHandler)
	return serv
}

// newCatalogSource picks the lot source: the upstream auction API by default,
// or the lot database when CATALOG_SOURCE=postgres.
func (s *Server) newCatalogSource(ctx context.Context) service.CatalogSource {
	switch kind := utils.GetEnv("CATALOG_SOURCE", "api"); kind {
	case "postgres":
		dsn := utils.GetEnv("DB_DSN", "")
		pool, err := db.NewPool(ctx, dsn)
		if err != nil {
			s.Logger.Fatal("[DB] connection failed -> " + err.Error())
		}
		s.pool = pool
		return repository.NewLotrepo(pool)
	case "api":
		apiURL := utils.GetEnv("API_URL", "https://larek-api.nomoreparties.co/api/onotebenado")
		cdnURL := utils.GetEnv("CDN_URL", "https://larek-api.nomoreparties.co/content/onotebenado")
		s.apiClient = auctionapi.New(apiURL, cdnURL)
		return s.apiClient
	default:
		s.Logger.Fatal("[CONFIG] unknown CATALOG_SOURCE -> " + kind)
		return nil
	}
}

func (s *Server) Run() error {
	s.Logger.Infof("[SERVER] running at -> " + s.HTTPServer.Addr)
	// Create context that listens for the interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Expire idle sessions in the background
	go s.Sessions.Sweep(ctx, config.SessionSweepEvery)

	// Run Server in the background
	go func() {
		if err := s.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatal("[SERVER] failed to serve -> " + err.Error())
		}
	}()

	// Listen for the interrupt signal
	<-ctx.Done()

	// create shutdown context with 30 - sec timeout
	shutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.pool != nil {
		s.pool.Close()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.Logger.Warnf("[CACHE] failed to close -> " + err.Error())
		}
	}
	if s.apiClient != nil {
		if err := s.apiClient.Close(); err != nil {
			s.Logger.Warnf("[API CLIENT] failed to close -> " + err.Error())
		}
	}

	// Trigger graceful shutdown
	if err := s.HTTPServer.Shutdown(shutCtx); err != nil {
		s.Logger.Fatal("[SERVER] shutdown failed -> " + err.Error())
		return err
	}

	return nil
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/logger"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/portfolio"
)

// SnapshotService computes wallet snapshots. *portfolio.Service satisfies it.
type SnapshotService interface {
	WalletSnapshot(ctx context.Context, user string, horizons []int, asOf time.Time) (*portfolio.WalletSnapshot, error)
}

// Server exposes the wallet snapshot API over HTTP.
type Server struct {
	service    SnapshotService
	logger     *logger.Logger
	httpServer *http.Server

	defaultWallet   string
	defaultHorizons []int
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	ListenAddr      string
	DefaultWallet   string
	DefaultHorizons []int
}

// NewServer creates the HTTP server around a snapshot service.
func NewServer(service SnapshotService, cfg ServerConfig, log *logger.Logger) *Server {
	s := &Server{
		service:         service,
		logger:          log.WithComponent("api"),
		defaultWallet:   cfg.DefaultWallet,
		defaultHorizons: cfg.DefaultHorizons,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           WithCORS(s.withRequestLogging(s.NewRouter())),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// NewRouter returns the router with all API routes.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/wallet", s.HandleWallet).Methods(http.MethodGet)
	return r
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(shutdownCtx)
}

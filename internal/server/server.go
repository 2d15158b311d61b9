// Package server exposes the dashboard core as an HTTP JSON API for
// the presentation layer. It returns plain structured data only; all
// rendering happens client-side.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"deribit-dashboard/internal/models"
)

// MarketData is the slice of the market-data service the server needs.
type MarketData interface {
	SpotPrice(ctx context.Context, asset models.Asset, refresh bool) (float64, bool)
	OptionsChain(ctx context.Context, asset models.Asset, refresh bool) []models.Instrument
}

// Enricher joins instruments with quotes and Greeks.
type Enricher interface {
	Enrich(ctx context.Context, instruments []models.Instrument) []models.ChainRow
}

// Server is the dashboard API server.
type Server struct {
	market   MarketData
	enricher Enricher
	logger   zerolog.Logger

	httpServer *http.Server
}

// New creates a Server listening on addr.
func New(addr string, market MarketData, enricher Enricher, logger zerolog.Logger) *Server {
	s := &Server{
		market:   market,
		enricher: enricher,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/spot", s.handleSpot)
	mux.HandleFunc("/api/v1/chain", s.handleChain)
	mux.HandleFunc("/api/v1/chain/greeks", s.handleGreeks)
	mux.HandleFunc("/api/v1/chain/smile", s.handleSmile)
	mux.HandleFunc("/api/v1/payoff", s.handlePayoff)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.logRequests(mux),
		// Enrichment of a wide chain is the slowest request; keep the
		// write timeout generous enough for it.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s
}

// Run serves until ctx is canceled, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("api server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Handler returns the server's HTTP handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

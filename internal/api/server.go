// Package api serves the tracker over HTTP as JSON for the chart front end.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"CryptoTracker/internal/ledger"
	"CryptoTracker/internal/model"
	"CryptoTracker/internal/oracle"
	"CryptoTracker/internal/resampler"
	"CryptoTracker/internal/tracker"
)

// Server handles the REST API.
type Server struct {
	svc     *tracker.Service
	router  *mux.Router
	origins []string
}

// NewServer creates a new API server.
func NewServer(svc *tracker.Service, allowedOrigins []string) *Server {
	s := &Server{
		svc:     svc,
		router:  mux.NewRouter(),
		origins: allowedOrigins,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/assets", s.handleGetAssets).Methods(http.MethodGet)
	api.HandleFunc("/prices/{asset}", s.handleGetPrice).Methods(http.MethodGet)

	api.HandleFunc("/chart/points/{index:[0-9]+}", s.handleGetChartPoint).Methods(http.MethodGet)
	api.HandleFunc("/chart/{asset}", s.handleGetChart).Methods(http.MethodGet)

	api.HandleFunc("/positions", s.handleGetPositions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleGetTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleSubmitTransaction).Methods(http.MethodPost)
	api.HandleFunc("/portfolio", s.handleGetPortfolio).Methods(http.MethodGet)

	s.router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler returns the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("api server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ==============================
// Handlers
// ==============================

func (s *Server) handleGetAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"assets": model.Assets,
		"ranges": model.Ranges,
	})
}

func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	asset, err := model.ParseAsset(mux.Vars(r)["asset"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	price, err := s.svc.Price(r.Context(), asset)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset": asset, "price": price})
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	asset, err := model.ParseAsset(mux.Vars(r)["asset"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rng := model.Range(r.URL.Query().Get("range"))
	if rng == "" {
		rng = model.Range24h
	}
	c, err := s.svc.Chart(r.Context(), asset, rng)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleGetChartPoint(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	bar, err := s.svc.Resampler.BarAt(idx)
	if err != nil {
		writeFailure(w, err)
		return
	}
	asset, rng := s.svc.Resampler.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"asset": asset,
		"range": rng,
		"index": idx,
		"time":  bar.Time,
		"price": bar.Close,
	})
}

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Ledger.Positions())
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Ledger.Transactions())
}

func (s *Server) handleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req tracker.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, pos, err := s.svc.Trade(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": tx, "position": pos})
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Valuation(r.Context()))
}

// ==============================
// Helpers
// ==============================

func writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidTransaction), errors.Is(err, resampler.ErrUnsupportedRange):
		status = http.StatusBadRequest
	case errors.Is(err, oracle.ErrPriceUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, resampler.ErrDataUnavailable):
		status = http.StatusNotFound
	case errors.Is(err, resampler.ErrSuperseded):
		status = http.StatusConflict
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

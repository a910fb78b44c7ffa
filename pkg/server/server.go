// Package server exposes the research pipeline over a small HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/finsight-ai/finsight/pkg/breaker"
	"github.com/finsight-ai/finsight/pkg/config"
	"github.com/finsight-ai/finsight/pkg/health"
	"github.com/finsight-ai/finsight/pkg/models"
	"github.com/finsight-ai/finsight/pkg/research"
	"github.com/finsight-ai/finsight/pkg/store"
)

// Server is the FinSight HTTP API.
type Server struct {
	cfg     *config.Config
	svc     *research.Service
	reg     *breaker.Registry
	monitor *health.Monitor
	store   *store.Store
	mux     *http.ServeMux
}

// New creates a Server wired with all dependencies.
func New(cfg *config.Config, svc *research.Service, reg *breaker.Registry, monitor *health.Monitor, st *store.Store) *Server {
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		reg:     reg,
		monitor: monitor,
		store:   st,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/v1/research", s.handleResearch)
	s.mux.HandleFunc("/v1/health", s.handleHealth)
	s.mux.HandleFunc("/v1/providers", s.handleProviders)
	s.mux.HandleFunc("/v1/breakers", s.handleBreakers)
	s.mux.HandleFunc("/v1/breakers/reset", s.handleBreakersReset)
	s.mux.HandleFunc("/v1/feedback", s.handleFeedback)
	s.mux.HandleFunc("/v1/reports", s.handleReports)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown on ctx
// cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("finsight listening on %s", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

type researchRequest struct {
	Symbol string `json:"symbol"`
	Query  string `json:"query"`
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Symbol == "" {
		writeJSONError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if req.Query == "" {
		req.Query = fmt.Sprintf("Provide a research overview of %s.", req.Symbol)
	}

	report, err := s.svc.Research(r.Context(), req.Symbol, req.Query)
	if err != nil {
		log.Printf("research %s failed: %v", req.Symbol, err)
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.monitor.Check()
	code := http.StatusOK
	if snap.Status != health.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, snap)
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Check().Chain)
}

func (s *Server) handleBreakers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reg.AllStatus())
}

type resetRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleBreakersReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != "" {
		s.reg.Get(req.Name).Reset()
	} else {
		s.reg.ResetAll()
	}
	writeJSON(w, http.StatusOK, s.reg.AllStatus())
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "persistence disabled")
		return
	}

	var entry models.FeedbackEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.store.SubmitFeedback(r.Context(), entry); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "persistence disabled")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	reports, err := s.store.ListReports(r.Context(), r.URL.Query().Get("symbol"), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"code":%d}}`, message, code)
}

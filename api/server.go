// Package api exposes the dispatch engine over HTTP. Handlers translate
// JSON requests into engine calls and always answer with a structured result
// body; transport-level errors are reserved for malformed requests.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chargenet/roaming/core/backend"
	"github.com/chargenet/roaming/core/cdr"
	"github.com/chargenet/roaming/core/dispatch"
	"github.com/chargenet/roaming/core/model"
	"github.com/chargenet/roaming/infra/logger"
)

// Server holds the handlers of the dispatch API.
type Server struct {
	engine *dispatch.Engine
	router *cdr.Router
	token  string
	log    logger.Logger
}

// NewServer creates the API server. token enables bearer authentication when
// non-empty; the CDR router may be nil when CDR ingestion is not exposed.
func NewServer(engine *dispatch.Engine, router *cdr.Router, token string, log logger.Logger) *Server {
	if log == nil {
		log = logger.New("api")
	}
	return &Server{engine: engine, router: router, token: token, log: log}
}

// Handler builds the HTTP route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		if s.token != "" {
			r.Use(s.bearerAuth)
		}
		r.Post("/reservations", s.handleReserve)
		r.Delete("/reservations/{id}", s.handleCancelReservation)
		r.Post("/sessions/start", s.handleRemoteStart)
		r.Post("/sessions/{id}/stop", s.handleRemoteStop)
		r.Post("/authorize/start", s.handleAuthorizeStart)
		r.Post("/authorize/stop", s.handleAuthorizeStop)
		if s.router != nil {
			r.Post("/cdrs", s.handleCDRs)
		}
		r.Get("/stats", s.handleStats)
	})
	return r
}

func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := s.engine.Reserve(r.Context(), toReserveRequest(req))
	out := reserveResponse{
		Kind:        res.Kind.String(),
		Description: res.Description,
		RuntimeMS:   res.Runtime.Milliseconds(),
	}
	if res.Reservation != nil {
		out.ReservationID = string(res.Reservation.ID)
	}
	writeJSON(w, s.log, out)
}

func (s *Server) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res := s.engine.CancelReservation(r.Context(), model.ReservationID(id))
	writeJSON(w, s.log, cancelResponse{
		Kind:          res.Kind.String(),
		ReservationID: string(res.ReservationID),
		Description:   res.Description,
		RuntimeMS:     res.Runtime.Milliseconds(),
	})
}

func (s *Server) handleRemoteStart(w http.ResponseWriter, r *http.Request) {
	var req remoteStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := s.engine.RemoteStart(r.Context(), toRemoteStartRequest(req))
	out := remoteStartResponse{
		Kind:        res.Kind.String(),
		Description: res.Description,
		RuntimeMS:   res.Runtime.Milliseconds(),
	}
	if res.Session != nil {
		out.SessionID = string(res.Session.ID)
	}
	writeJSON(w, s.log, out)
}

func (s *Server) handleRemoteStop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res := s.engine.RemoteStop(r.Context(), model.SessionID(id))
	writeJSON(w, s.log, remoteStopResponse{
		Kind:        res.Kind.String(),
		SessionID:   string(res.SessionID),
		Description: res.Description,
		RuntimeMS:   res.Runtime.Milliseconds(),
	})
}

func (s *Server) handleAuthorizeStart(w http.ResponseWriter, r *http.Request) {
	s.handleAuthorize(w, r, s.engine.AuthorizeStart)
}

func (s *Server) handleAuthorizeStop(w http.ResponseWriter, r *http.Request) {
	s.handleAuthorize(w, r, s.engine.AuthorizeStop)
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request, call func(context.Context, backend.AuthorizeRequest) model.AuthResult) {
	var req authorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := call(r.Context(), toAuthorizeRequest(req))
	writeJSON(w, s.log, authorizeResponse{
		Decision:    res.Decision.String(),
		ProviderID:  string(res.ProviderID),
		SessionID:   string(res.SessionID),
		Cached:      !res.CachedAt.IsZero(),
		Description: res.Description,
		RuntimeMS:   res.Runtime.Milliseconds(),
	})
}

func (s *Server) handleCDRs(w http.ResponseWriter, r *http.Request) {
	var reqs []cdrRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cdrs := make([]model.ChargeDetailRecord, len(reqs))
	for i, c := range reqs {
		cdrs[i] = c.toModel()
	}
	res := s.router.Route(r.Context(), cdrs)
	out := cdrBatchResponse{
		Overall:   res.Overall.String(),
		Outcomes:  make([]cdrOutcomeResponse, len(res.Outcomes)),
		RuntimeMS: res.Runtime.Milliseconds(),
	}
	for i, o := range res.Outcomes {
		out.Outcomes[i] = cdrOutcomeResponse{
			CDRID:       string(o.CDRID),
			SessionID:   string(o.SessionID),
			Kind:        o.Kind.String(),
			Target:      o.Target,
			Description: o.Description,
		}
	}
	writeJSON(w, s.log, out)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	tracker := s.engine.Latency()
	type quantiles struct {
		P50MS   float64 `json:"p50_ms"`
		P95MS   float64 `json:"p95_ms"`
		P99MS   float64 `json:"p99_ms"`
		Samples int     `json:"samples"`
	}
	out := make(map[string]quantiles)
	for _, op := range tracker.Operations() {
		q := tracker.Snapshot(op)
		out[op] = quantiles{
			P50MS:   float64(q.P50.Microseconds()) / 1000,
			P95MS:   float64(q.P95.Microseconds()) / 1000,
			P99MS:   float64(q.P99.Microseconds()) / 1000,
			Samples: q.Samples,
		}
	}
	writeJSON(w, s.log, out)
}

func writeJSON(w http.ResponseWriter, log logger.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %v", err)
	}
}

// StartServer runs the API until the context is canceled.
func StartServer(ctx context.Context, addr string, handler http.Handler, log logger.Logger) error {
	if log == nil {
		log = logger.New("api")
	}
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutdown: %v", err)
		}
		cancel()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

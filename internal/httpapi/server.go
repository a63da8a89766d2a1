package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/openwatch/beacon/internal/domain"
	apimw "github.com/openwatch/beacon/internal/httpapi/middleware"
	"github.com/openwatch/beacon/internal/monitor"
	"github.com/openwatch/beacon/internal/repo"
)

// Server is the data-entry and read surface for the dashboard. The
// monitoring pipeline itself runs behind the Dispatcher; the API only
// triggers cycles and reads their output.
type Server struct {
	Logger     *zap.Logger
	Clients    repo.ClientStore
	Endpoints  repo.EndpointStore
	Results    repo.ResultStore
	Dispatcher *monitor.Dispatcher
}

func NewServer(l *zap.Logger, cs repo.ClientStore, es repo.EndpointStore, rs repo.ResultStore, d *monitor.Dispatcher) *Server {
	return &Server{Logger: l, Clients: cs, Endpoints: es, Results: rs, Dispatcher: d}
}

func (s *Server) Router(keys apimw.Keys, publicRPM, publicBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// read surface
	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(publicRPM, publicBurst))
		r.Use(apimw.RequireAny(keys))
		r.Get("/api/clients", s.handleListClients)
		r.Get("/api/clients/{clientID}/endpoints", s.handleListEndpoints)
		r.Get("/api/endpoints/{endpointID}/latest", s.handleLatestResult)
	})

	// write surface
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin(keys))
		r.Post("/api/clients", s.handleAddClient)
		r.Post("/api/endpoints", s.handleAddEndpoint)
		r.Post("/api/cycles", s.handleRunCycle)
	})

	return r
}

type addClientPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleAddClient(w http.ResponseWriter, r *http.Request) {
	var p addClientPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Email == "" {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	c := &domain.Client{Name: p.Name, Email: p.Email, CreatedAt: time.Now().UTC()}
	if err := s.Clients.AddClient(r.Context(), c); err != nil {
		s.Logger.Warn("add_client_error", zap.Error(err))
		http.Error(w, "could not add", http.StatusInternalServerError)
		return
	}

	s.Logger.Info("added_client", zap.String("client_id", string(c.ID)))
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	cs, err := s.Clients.ListClients(r.Context())
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

type addEndpointPayload struct {
	ClientID string `json:"client_id"`
	URL      string `json:"url"`
	IsActive *bool  `json:"is_active"`
}

func (s *Server) handleAddEndpoint(w http.ResponseWriter, r *http.Request) {
	var p addEndpointPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.ClientID == "" {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if !isValidHTTPURL(p.URL) {
		http.Error(w, "invalid url", http.StatusBadRequest)
		return
	}

	owner, err := s.Clients.GetClient(r.Context(), domain.ClientID(p.ClientID))
	if err != nil {
		http.Error(w, "lookup error", http.StatusInternalServerError)
		return
	}
	if owner == nil {
		http.Error(w, "unknown client", http.StatusNotFound)
		return
	}

	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	e := &domain.Endpoint{
		ClientID:  owner.ID,
		URL:       p.URL,
		IsActive:  active,
		Status:    domain.StatusUnknown,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Endpoints.AddEndpoint(r.Context(), e); err != nil {
		s.Logger.Warn("add_endpoint_error", zap.Error(err))
		http.Error(w, "could not add", http.StatusInternalServerError)
		return
	}

	s.Logger.Info("added_endpoint",
		zap.String("endpoint_id", string(e.ID)),
		zap.String("url", e.URL),
	)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	clientID := domain.ClientID(chi.URLParam(r, "clientID"))
	eps, err := s.Endpoints.ListByClient(r.Context(), clientID)
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, eps)
}

func (s *Server) handleLatestResult(w http.ResponseWriter, r *http.Request) {
	id := domain.EndpointID(chi.URLParam(r, "endpointID"))
	last, err := s.Results.LastByEndpoint(r.Context(), id)
	if err != nil {
		http.Error(w, "lookup error", http.StatusInternalServerError)
		return
	}
	if last == nil {
		http.Error(w, "no results", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// handleRunCycle triggers one monitoring cycle. The response reflects
// dispatch only, never individual check outcomes.
func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	mode := monitor.ModeAsync
	if r.URL.Query().Get("mode") == string(monitor.ModeSync) {
		mode = monitor.ModeSync
	}
	clientID := domain.ClientID(r.URL.Query().Get("client_id"))

	// Checks must outlive this request in async mode.
	ctx := context.WithoutCancel(r.Context())
	err := s.Dispatcher.RunCycle(ctx, mode, clientID)
	switch {
	case errors.Is(err, monitor.ErrCycleRunning):
		http.Error(w, "cycle already running", http.StatusConflict)
	case err != nil:
		s.Logger.Warn("cycle_trigger_error", zap.Error(err))
		http.Error(w, "dispatch failed", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"mode": string(mode), "status": "dispatched"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// isValidHTTPURL accepts absolute http/https URLs with a host.
func isValidHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

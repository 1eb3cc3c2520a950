// Package httpadmin exposes the job lifecycle over a small JSON API:
//
//	GET    /healthz             liveness probe
//	POST   /api/jobs            create a job
//	GET    /api/jobs            list jobs
//	GET    /api/jobs/{id}       fetch one job
//	POST   /api/jobs/{id}/run   fire a job immediately
//	DELETE /api/jobs/{id}       delete a job
//
// When a token is configured, every /api route requires it as a bearer
// credential.
package httpadmin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tabreport/internal/jobstore"
	"tabreport/internal/scheduler"
	"tabreport/internal/trigger"
	logx "tabreport/pkg/logx"
)

// Lifecycle is the slice of the scheduler the API needs.
type Lifecycle interface {
	Create(ctx context.Context, req scheduler.CreateRequest) (*scheduler.JobView, error)
	Delete(ctx context.Context, id string) error
	RunNow(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*scheduler.JobView, error)
	Jobs(ctx context.Context) ([]scheduler.JobView, error)
}

type Server struct {
	svc   Lifecycle
	token string
	log   logx.Logger
}

func New(svc Lifecycle, token string, log logx.Logger) *Server {
	return &Server{svc: svc, token: token, log: log}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("POST /api/jobs", s.auth(s.handleCreate))
	mux.Handle("GET /api/jobs", s.auth(s.handleList))
	mux.Handle("GET /api/jobs/{id}", s.auth(s.handleGet))
	mux.Handle("POST /api/jobs/{id}/run", s.auth(s.handleRun))
	mux.Handle("DELETE /api/jobs/{id}", s.auth(s.handleDelete))
	return mux
}

func (s *Server) auth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid or missing bearer token")
				return
			}
		}
		next(w, r)
	})
}

// createRequest is the POST /api/jobs body.
type createRequest struct {
	Name          string         `json:"name"`
	Recipient     string         `json:"recipient"`
	Language      string         `json:"language"`
	IncludeCharts bool           `json:"include_charts"`
	AutoRefresh   bool           `json:"auto_refresh"`
	Source        string         `json:"source"`
	CredsRef      string         `json:"creds_ref"`
	Schedule      trigger.Params `json:"schedule"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	view, err := s.svc.Create(r.Context(), scheduler.CreateRequest{
		Config: jobstore.JobConfig{
			Name:          req.Name,
			Recipient:     req.Recipient,
			Language:      req.Language,
			IncludeCharts: req.IncludeCharts,
			AutoRefresh:   req.AutoRefresh,
			Source:        req.Source,
			CredsRef:      req.CredsRef,
		},
		Params: req.Schedule,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.svc.Jobs(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RunNow(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var cerr *trigger.ConfigError
	switch {
	case errors.As(err, &cerr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, jobstore.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scheduler.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("admin api internal error", logx.Err(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

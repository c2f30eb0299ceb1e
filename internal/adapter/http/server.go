// Package http is the local control surface. It serves the JSON API and the
// status page forms next to the frame stream and health endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/led"
	"github.com/couchcryptid/metar-map-service/internal/pipeline"
	"github.com/couchcryptid/metar-map-service/internal/settings"
)

const fetchTriggered = "Metar fetch triggered."

// Controller is the subset of the schedule controller the server drives.
type Controller interface {
	Status() pipeline.Status
	Frame() led.Frame
	Execute(ctx context.Context, cmd pipeline.Command) (pipeline.Result, error)
	CheckReadiness(ctx context.Context) error
}

// Options configures a Server. Frames and StaticDir are optional.
type Options struct {
	Addr       string
	Controller Controller
	Frames     http.Handler
	StaticDir  string
	Logger     *slog.Logger
}

// Server exposes the control API and the health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	ctrl       Controller
	logger     *slog.Logger
}

// NewServer builds the router and the underlying http.Server.
func NewServer(opts Options) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ctrl:   opts.Controller,
		logger: opts.Logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(opts.Controller))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/frame", s.handleFrame)
		r.Post("/settings/{name}", s.handleSetting)
		r.Post("/fetch", s.handleAPIFetch)
	})

	r.Post("/updatebrightness", s.handleForm("brightness", func(v int) pipeline.Command { return pipeline.SetBrightness{Value: v} }))
	r.Post("/updatestarttime", s.handleForm("starttime", func(v int) pipeline.Command { return pipeline.SetStartTime{Hour: v} }))
	r.Post("/updateendtime", s.handleForm("endtime", func(v int) pipeline.Command { return pipeline.SetEndTime{Hour: v} }))
	r.Get("/fetch", s.handleFetch)

	if opts.Frames != nil {
		r.Handle("/ws/frame", opts.Frames)
	}

	r.Get("/", s.handleIndex)
	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Frame())
}

type settingRequest struct {
	Value *int `json:"value"`
}

func (s *Server) handleSetting(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, errors.New(`body must be {"value": <int>}`))
		return
	}

	cmd, ok := settingCommand(name, *req.Value)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrUnknownSetting)
		return
	}

	res, err := s.ctrl.Execute(r.Context(), cmd)
	if err != nil {
		s.logger.Warn("setting update failed", "setting", name, "value", *req.Value, "error", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAPIFetch(w http.ResponseWriter, r *http.Request) {
	res, err := s.ctrl.Execute(r.Context(), pipeline.TriggerFetch{})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleForm serves the status page form posts. A missing field changes
// nothing; every accepted or failed-to-persist update redirects back to "/".
func (s *Server) handleForm(field string, build func(int) pipeline.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.FormValue(field)
		if raw == "" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, field+" must be an integer", http.StatusBadRequest)
			return
		}
		if _, err := s.ctrl.Execute(r.Context(), build(v)); err != nil {
			if !errors.Is(err, domain.ErrPersistWriteFailed) {
				http.Error(w, err.Error(), statusFor(err))
				return
			}
			s.logger.Error("form update not persisted", "field", field, "value", v, "error", err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	_, err := s.ctrl.Execute(r.Context(), pipeline.TriggerFetch{})
	switch {
	case errors.Is(err, domain.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		// The cycle ran and failed; the trigger itself is still acknowledged.
		s.logger.Warn("triggered fetch failed", "error", err)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fetchTriggered)) //nolint:errcheck // best-effort response
}

func settingCommand(name string, v int) (pipeline.Command, bool) {
	switch name {
	case settings.LEDBrightness:
		return pipeline.SetBrightness{Value: v}, true
	case settings.StartTime:
		return pipeline.SetStartTime{Hour: v}, true
	case settings.EndTime:
		return pipeline.SetEndTime{Hour: v}, true
	}
	return nil, false
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownSetting):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFetchFailed), errors.Is(err, domain.ErrParseFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

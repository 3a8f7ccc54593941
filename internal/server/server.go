package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spigell/autofill/internal/dom"
	"github.com/spigell/autofill/internal/filler"
	"github.com/spigell/autofill/internal/profile"
	"github.com/spigell/autofill/internal/trigger"
)

const (
	DefaultAddr = "127.0.0.1:8765"

	maxBodyBytes    = 8 << 20
	shutdownTimeout = 10 * time.Second
)

// Config configures the HTTP endpoint used by the browser extension.
type Config struct {
	Addr           string        `mapstructure:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed-origins"`
	Wait           time.Duration `mapstructure:"wait"`
	// BlockFileUpload makes posted pages refuse resume assignment.
	BlockFileUpload bool `mapstructure:"-"`
}

// FillRequest carries the page to fill.
type FillRequest struct {
	HTML string `json:"html"`
}

// FillResponse is the trigger response plus the filled page.
type FillResponse struct {
	trigger.Response
	HTML string `json:"html,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server fills posted pages from the configured profile store.
type Server struct {
	cfg    Config
	store  profile.Store
	opts   filler.Options
	logger *zap.Logger
	router chi.Router
}

func New(cfg Config, store profile.Store, opts filler.Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	s := &Server{cfg: cfg, store: store, opts: opts, logger: log}
	s.router = s.routes()

	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(
		corsHandler(s.cfg.AllowedOrigins),
		requestID,
		middleware.RequestSize(maxBodyBytes),
		accessLog(s.logger),
		middleware.Recoverer,
	)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/form-data", s.formData)
		r.Post("/fill/{action}", s.fill)
	})

	return r
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listenErr := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	s.logger.Info("server exited")
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// formData answers the getFormData exchange with the stored record.
func (s *Server) formData(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.GetFormData(r.Context())
	if errors.Is(err, profile.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("get form data", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "profile store unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, data)
}

func (s *Server) fill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	action := chi.URLParam(r, "action")
	log := s.logger.With(zap.String("request_id", middleware.GetReqID(ctx)))

	var req FillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(req.HTML) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "html is required"})
		return
	}

	doc, err := dom.ParseString(req.HTML)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	doc.BlockFileAssignment = s.cfg.BlockFileUpload

	engine := filler.New(doc, log, s.opts)
	if err := engine.Load(ctx, s.store); err != nil {
		// The engine stays uninitialized and every action reports the missing profile.
		log.Warn("profile not loaded", zap.Error(err))
	}

	d := trigger.NewDispatcher(engine, log)
	d.Wait = s.cfg.Wait

	resp := FillResponse{Response: d.Handle(ctx, action)}
	if resp.Success {
		resp.HTML = doc.String()
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

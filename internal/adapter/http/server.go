// Package http is the webhook boundary of the chat service: it decodes chat
// actions from form posts, dispatches them to the responder and writes the
// JSON reply envelope. It also serves health, readiness and metrics.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-chat-service/internal/domain"
)

// maxFormBytes bounds the size of a chat form body.
const maxFormBytes = 64 << 10

// Responder produces reply text for chat actions.
type Responder interface {
	Greet(ctx context.Context, name string) (string, error)
	Reply(ctx context.Context, text string) (string, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the chat webhook plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	responder  Responder
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewServer creates an HTTP server. allowedOrigins restricts which browser
// origins may post chat messages.
func NewServer(addr string, allowedOrigins []string, responder Responder, ready ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{
		responder: responder,
		validate:  validator.New(),
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		r.Post("/chat/messages", s.handleChat)
		r.Options("/chat/messages", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      gzhttp.GzipHandler(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
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

// chatForm is the decoded webhook payload.
type chatForm struct {
	Action string `validate:"required,oneof=join message"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatResponse struct {
	Messages []textMessage `json:"messages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	form := chatForm{Action: r.PostForm.Get("action")}
	if err := s.validate.Struct(form); err != nil {
		writeError(w, http.StatusBadRequest, "action must be one of: join, message")
		return
	}

	var (
		reply string
		err   error
	)
	switch form.Action {
	case domain.ActionJoin:
		if !r.PostForm.Has("name") {
			writeError(w, http.StatusBadRequest, "name is required for join")
			return
		}
		reply, err = s.responder.Greet(r.Context(), r.PostForm.Get("name"))
	case domain.ActionMessage:
		if !r.PostForm.Has("text") {
			writeError(w, http.StatusBadRequest, "text is required for message")
			return
		}
		reply, err = s.responder.Reply(r.Context(), r.PostForm.Get("text"))
	}
	if err != nil {
		s.logger.Error("render reply failed", "error", err, "action", form.Action,
			"request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, "could not build reply")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Messages: []textMessage{{Type: "text", Text: reply}},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// requestLogger writes one line per request after the handler returns.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

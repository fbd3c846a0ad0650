package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/baalimago/agiml/internal/metrics"
	"github.com/baalimago/agiml/internal/transform"
	"github.com/baalimago/agiml/pkg/agiml/models"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

const maxBodyBytes = 20 << 20

// Handler exposes a Middleware over http, for pipelines living in other
// processes.
type Handler struct {
	mw *transform.Middleware
	m  *metrics.Metrics
}

func NewHandler(mw *transform.Middleware, m *metrics.Metrics) *Handler {
	return &Handler{mw: mw, m: m}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/settings", h.settings)
	r.Post("/before-request", h.beforeRequest)
	r.Post("/after-response", h.afterResponse)
	r.Post("/convert", h.convert)
}

// Routes returns the full router: health, metrics and the v1 api.
func (h *Handler) Routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(h.requestID)
	r.Use(h.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/metrics", h.m.Handler())

	v1 := chi.NewRouter()
	h.Register(v1)
	r.Mount("/v1", v1)
	return r
}

func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.m.ObserveRequest(route, status, time.Since(start))
		if misc.Truthy(os.Getenv("DEBUG")) {
			ancli.Okf("%v %v -> %v (%v)\n", r.Method, route, status, time.Since(start))
		}
	})
}

func (h *Handler) settings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.mw.Settings())
}

func readConversation(w http.ResponseWriter, r *http.Request) (models.Conversation, bool) {
	var conv models.Conversation
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid_request", "failed to read request body")
		return conv, false
	}
	if err := json.Unmarshal(body, &conv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid_json", "invalid json")
		return conv, false
	}
	return conv, true
}

func (h *Handler) beforeRequest(w http.ResponseWriter, r *http.Request) {
	conv, ok := readConversation(w, r)
	if !ok {
		return
	}
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	out, err := h.mw.BeforeRequest(r.Context(), conv)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "before_request_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) afterResponse(w http.ResponseWriter, r *http.Request) {
	conv, ok := readConversation(w, r)
	if !ok {
		return
	}
	out, err := h.mw.AfterResponse(r.Context(), conv)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "after_response_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid_request", "failed to read request body")
		return
	}
	out, err := h.mw.ProcessResponse(string(body))
	if err != nil {
		ancli.Warnf("kept original markup for some directives: %v\n", err)
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// Serve handler on addr until ctx is cancelled, then shut down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		ancli.PrintOK(fmt.Sprintf("listening on: '%v'\n", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

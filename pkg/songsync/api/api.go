// Package api serves storage notifications over HTTP, as sent by MinIO
// webhook targets or an S3 to HTTP bridge.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendant/simple-song-sync/pkg/songsync"
)

// maxEventSize bounds notification bodies.
const maxEventSize = 1 << 20

// EventHandler handles a decoded notification envelope.
type EventHandler interface {
	HandleEvent(ctx context.Context, event events.S3Event) (string, error)
}

// Options configure the router
type Options struct {
	// Token, when set, must be presented as "Authorization: Bearer <token>" on /events.
	Token string
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Timeout bounds a single event (default: 2m).
	Timeout time.Duration
	Logger  *slog.Logger
}

// EventsHandler handles notification endpoints
type EventsHandler struct {
	events EventHandler
	opts   Options
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(events EventHandler, opts Options) *EventsHandler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &EventsHandler{events: events, opts: opts}
}

// Router returns the full HTTP router: /events, /health and /metrics
func (h *EventsHandler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.opts.Timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	if h.opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Mount("/events", h.Routes())
	return r
}

// Routes returns the router for event endpoints
func (h *EventsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	if h.opts.Token != "" {
		r.Use(bearerToken(h.opts.Token))
	}
	r.Post("/", h.PostEvent)
	return r
}

// PostEvent decodes a notification and runs it through the handler
func (h *EventsHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	var event events.S3Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventSize)).Decode(&event); err != nil {
		h.opts.Logger.Error("Failed to decode notification", "err", err)
		writeError(w, r, http.StatusBadRequest, "invalid notification body")
		return
	}

	ctx := r.Context()
	if id := middleware.GetReqID(ctx); id != "" {
		ctx = songsync.WithInvocationID(ctx, id)
	}

	msg, err := h.events.HandleEvent(ctx, event)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	render.JSON(w, r, map[string]string{"message": msg})
}

func statusFor(err error) int {
	var fetchErr *songsync.FetchError
	switch {
	case errors.Is(err, songsync.ErrTagParse):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, songsync.ErrNoRecords),
		errors.Is(err, songsync.ErrInvalidObjectKey),
		errors.Is(err, songsync.ErrUnknownMediaType),
		errors.Is(err, songsync.ErrUnsupportedMediaType),
		errors.Is(err, songsync.ErrUnsupportedEventType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

func bearerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

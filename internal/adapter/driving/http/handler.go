package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/notifyhub/internal/application"
	"github.com/ericfisherdev/notifyhub/internal/domain/port/driven"
)

const maxRequestBody = 1 << 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	notifications *application.NotificationService
	health        driven.StoreHealth
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	notifications *application.NotificationService,
	health driven.StoreHealth,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		notifications: notifications,
		health:        health,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging, metrics and recovery middleware. metricsHandler is mounted at
// /metrics when non-nil.
func NewServeMux(h *Handler, logger *slog.Logger, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /notifications", h.ListNotifications)
	mux.HandleFunc("GET /notifications/{id}", h.GetNotification)
	mux.HandleFunc("POST /notifications", h.CreateNotification)
	mux.HandleFunc("GET /health", h.Health)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = metricsMiddleware(wrapped)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListNotifications returns every stored notification.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list notifications", "error", err)
		writeStoreError(w, err)
		return
	}

	resp := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, toNotificationResponse(n))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetNotification returns a single notification by ID.
func (h *Handler) GetNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	n, err := h.notifications.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, driven.ErrNotificationNotFound) {
			h.logger.Error("failed to get notification", "id", id, "error", err)
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNotificationResponse(*n))
}

// CreateNotification stores a new notification and returns it with its ID.
func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.notifications.Create(r.Context(), req.toModel())
	if err != nil {
		if errors.Is(err, application.ErrInvalidNotification) {
			h.logger.Debug("rejected notification", "error", err)
			writeError(w, http.StatusBadRequest, "invalid notification")
			return
		}
		h.logger.Error("failed to create notification", "title", req.Title, "error", err)
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNotificationResponse(*n))
}

// Health reports whether the store answers a round trip.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := h.health.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Time:   now,
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   now,
	})
}

// writeStoreError maps a store error kind to its HTTP status. Details stay in
// the logs.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, driven.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, "notification not found")
	case errors.Is(err, driven.ErrConstraintViolation):
		writeError(w, http.StatusConflict, "notification rejected by store")
	case errors.Is(err, driven.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/notifyhub/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it with the given status code.
// If marshalling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// NotificationResponse is the JSON representation of a stored notification.
// Field names follow the email_notifications columns.
type NotificationResponse struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	NotificationType int16  `json:"notification_type"`
	Template         string `json:"template"`
	Email            string `json:"email"`
	Password         string `json:"pwd"`
	SMTPServer       string `json:"smtp_server"`
	SMTPPort         int    `json:"smtp_port"`
	Description      string `json:"description"`
}

// CreateNotificationRequest is the JSON body for POST /notifications.
type CreateNotificationRequest struct {
	Title            string `json:"title"`
	NotificationType int16  `json:"notification_type"`
	Template         string `json:"template"`
	Email            string `json:"email"`
	Password         string `json:"pwd"`
	SMTPServer       string `json:"smtp_server"`
	SMTPPort         int    `json:"smtp_port"`
	Description      string `json:"description"`
}

// HealthResponse is the JSON representation of a health check.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func (r CreateNotificationRequest) toModel() model.Notification {
	return model.Notification{
		Title:       r.Title,
		Type:        model.NotificationType(r.NotificationType),
		Template:    r.Template,
		Email:       r.Email,
		Password:    r.Password,
		SMTPServer:  r.SMTPServer,
		SMTPPort:    r.SMTPPort,
		Description: r.Description,
	}
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:               n.ID,
		Title:            n.Title,
		NotificationType: int16(n.Type),
		Template:         n.Template,
		Email:            n.Email,
		Password:         n.Password,
		SMTPServer:       n.SMTPServer,
		SMTPPort:         n.SMTPPort,
		Description:      n.Description,
	}
}

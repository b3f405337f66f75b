package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joestar02/fleetdesk/domain"
)

type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the machine-readable error payload. ConflictID is set on
// reservation overlap rejections; CorrelationID on internal errors so the
// incident can be found in the logs.
type ErrorBody struct {
	Kind          string `json:"kind"`
	Details       string `json:"details,omitempty"`
	ConflictID    int64  `json:"conflict_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, Envelope{Status: true, Message: message, Data: data})
}

// AppError maps a domain error to its HTTP status and error body. Errors
// without a kind are reported as internal without leaking their cause.
func AppError(w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		WriteJSON(w, http.StatusInternalServerError, Envelope{
			Status:  false,
			Message: "Internal error",
			Error:   &ErrorBody{Kind: string(domain.KindInternal)},
		})
		return
	}
	WriteJSON(w, domain.HTTPStatus(appErr), Envelope{
		Status:  false,
		Message: appErr.Message,
		Error: &ErrorBody{
			Kind:          string(appErr.Kind),
			Details:       appErr.Details,
			ConflictID:    appErr.ConflictID,
			CorrelationID: appErr.CorrelationID,
		},
	})
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, Envelope{Status: false, Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

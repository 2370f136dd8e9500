package utils

import (
	"inventory/models"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func ParseJSONBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err != nil {
		return err
	}
	return nil
}

func RespondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to serialize JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(response)
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func RespondError(w http.ResponseWriter, statusCode int, err error, message string) {
	body := ErrorResponse{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	RespondJSON(w, statusCode, body)
}

// StatusForError maps the domain sentinels onto HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrNothingToExport):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateKey), errors.Is(err, models.ErrDuplicateUser):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidFormat),
		errors.Is(err, models.ErrWeakPassword),
		errors.Is(err, models.ErrPasswordMismatch),
		errors.Is(err, models.ErrMissingField),
		errors.Is(err, models.ErrInvalidBackupFile),
		errors.Is(err, models.ErrInvalidSpreadsheetURL):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbiddenDomain):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrNoSession),
		errors.Is(err, models.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrProviderDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, models.ErrNotConfigured):
		return http.StatusPreconditionFailed
	case errors.Is(err, models.ErrRemoteError):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondServiceError answers with the status matching err and logs server side
// failures.
func RespondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, message string) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.Error(err))
	}
	RespondError(w, status, err, message)
}

package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/andreas2301/genericllmadapter/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err error) {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
	}

	resp := ErrorResponse{Error: detail}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// StatusFor maps the error taxonomy onto HTTP statuses: client-input faults
// are 4xx, upstream provider faults are 502, everything else is 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrSessionForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrSessionNotFound), errors.Is(err, core.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, core.ErrProviderNameEmpty),
		errors.Is(err, core.ErrProviderUnsupported),
		errors.Is(err, core.ErrCredentialMissing),
		errors.Is(err, core.ErrConfigInvalid),
		errors.Is(err, core.ErrConfigMissing):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrLLMTransport),
		errors.Is(err, core.ErrLLMUpstreamStatus),
		errors.Is(err, core.ErrLLMEmptyResponse),
		errors.Is(err, core.ErrLLMBadResponse),
		errors.Is(err, core.ErrLLMEmptyPrompt):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorAuto writes an error response with the status derived from the error.
func ErrorAuto(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), err)
}

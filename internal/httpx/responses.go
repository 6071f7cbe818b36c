package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"libraryapi/internal/apperr"
)

const (
	CodeBadRequest  = "BAD_REQUEST"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "CONFLICT"
	CodeInternal    = "INTERNAL_ERROR"
	CodeTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeRateLimited = "RATE_LIMIT_EXCEEDED"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    any  `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponseBody `json:"error"`
	Meta    any               `json:"meta,omitempty"`
}

type ErrorResponseBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details []apperr.Detail `json:"details,omitempty"`
}

func buildMeta(r *http.Request, custom map[string]any) map[string]any {
	requestID := RequestIDFrom(r)
	if requestID == "" && len(custom) == 0 {
		return nil
	}
	meta := make(map[string]any, len(custom)+1)
	for k, v := range custom {
		meta[k] = v
	}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	return meta
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: error=%v", err)
	}
}

func JSONSuccess(w http.ResponseWriter, r *http.Request, data any, meta map[string]any) {
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: data, Meta: buildMeta(r, meta)})
}

func JSONCreated(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusCreated, SuccessResponse{Success: true, Data: data, Meta: buildMeta(r, nil)})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, r *http.Request, status int, code, message string, details []apperr.Detail) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Error: ErrorResponseBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: buildMeta(r, nil),
	})
}

// StatusOf maps an error to its HTTP status and envelope code.
func StatusOf(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.InvalidArgument:
		return http.StatusBadRequest, CodeBadRequest
	case apperr.NotFound:
		return http.StatusNotFound, CodeNotFound
	case apperr.Persistence:
		return http.StatusConflict, CodeConflict
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, CodeTooLarge
	}
	return http.StatusInternalServerError, CodeInternal
}

// Error writes err as an envelope. Internal errors are logged and masked.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusOf(err)
	switch status {
	case http.StatusInternalServerError:
		log.Printf("request failed: request_id=%s method=%s path=%s error=%v", RequestIDFrom(r), r.Method, r.URL.Path, err)
		JSONError(w, r, status, code, "Internal server error", nil)
	case http.StatusRequestEntityTooLarge:
		JSONError(w, r, status, code, "Request body too large", nil)
	default:
		JSONError(w, r, status, code, apperr.MessageOf(err), apperr.DetailsOf(err))
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/bannerforge/bannerforge/pkg/errors"
)

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error code to an HTTP status and writes the JSON
// error body. Internal details stay out of the response; clients get the
// user-facing message only.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{
		Code:  code,
		Error: errors.UserMessage(err),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidTemplate,
		errors.ErrCodeInvalidColor,
		errors.ErrCodeInvalidMapping,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeEmptyUpload:
		return http.StatusBadRequest
	case errors.ErrCodeJobNotFound, errors.ErrCodeAssetNotFound:
		return http.StatusNotFound
	case errors.ErrCodeJobCancelled:
		return http.StatusConflict
	case errors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package httpapi

import (
	"encoding/json"
	"net/http"

	forgeerrors "github.com/input-output-hk/catalyst-forge-libs/errors"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool                  `json:"success"`
	Data    any                   `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
	Code    forgeerrors.ErrorCode `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Envelope{Error: message, Code: forgeerrors.CodeInvalidInput})
}

// writeError maps err onto a status code through its error code.
func writeError(w http.ResponseWriter, err error) {
	code := mperrors.CodeOf(err)
	writeJSON(w, statusFor(code), Envelope{Error: err.Error(), Code: code})
}

func statusFor(code forgeerrors.ErrorCode) int {
	switch code {
	case forgeerrors.CodeNotFound:
		return http.StatusNotFound
	case mperrors.CodeInvalidKey, forgeerrors.CodeInvalidInput:
		return http.StatusBadRequest
	case mperrors.CodeConstraint:
		return http.StatusUnprocessableEntity
	case forgeerrors.CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

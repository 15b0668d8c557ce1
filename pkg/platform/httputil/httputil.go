// Package httputil centralizes JSON response writing so handlers and
// middleware produce consistent envelopes.
package httputil

import (
	"encoding/json"
	"net/http"

	pkgerrors "streamgate/pkg/errors"
)

// WriteJSON serializes v and writes it with the given status code.
// Encoding errors are silently dropped; headers are already committed by then.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a coded domain error to an HTTP status and JSON body.
// Internal errors omit the description so backing-store details never leak
// to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := pkgerrors.CodeOf(err)

	body := map[string]string{"error": string(code)}
	if code != pkgerrors.CodeInternal {
		if msg := pkgerrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}

	WriteJSON(w, statusFor(code), body)
}

func statusFor(code pkgerrors.Code) int {
	switch code {
	case pkgerrors.CodeInvalidInput:
		return http.StatusBadRequest
	case pkgerrors.CodeNotFound:
		return http.StatusNotFound
	case pkgerrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Package api wires a backend.Backend into HTTP handlers, routing, and the
// JSON/GeoJSON response writers shared across them.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code and value.
// If encoding fails, it logs the error and returns it; the status has
// already been written, so no error response is sent.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response",
			slog.String("error", err.Error()),
		)
		return err
	}

	return nil
}

// WriteGeoJSON writes a GeoJSON response with the given status code and value.
// GeoJSON responses use the application/geo+json media type.
func WriteGeoJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode GeoJSON response",
			slog.String("error", err.Error()),
		)
		return err
	}

	return nil
}

// WriteError writes a plain-text error body, matching the Rust original's
// IntoResponse for its route Error enum (routes.rs): every error path is a
// (StatusCode, message) tuple, never a JSON envelope.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, message)
}

// WriteBadRequest writes a 400 Bad Request error response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteNotFound writes a 404 Not Found error response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteInvalidParameter writes a 400 Bad Request error for invalid parameters.
func WriteInvalidParameter(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

// WriteInternalErrorWithRequestID writes a 500 response carrying the
// request ID that produced it, used by the panic-recovery middleware so a
// client can correlate a failure with the corresponding server log line.
func WriteInternalErrorWithRequestID(w http.ResponseWriter, message, requestID string) {
	if requestID != "" {
		w.Header().Set(RequestIDHeader, requestID)
	}
	WriteInternalError(w, message)
}

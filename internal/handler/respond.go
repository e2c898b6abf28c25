package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondInternalError hides the cause from the client but logs it
func respondInternalError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	respondError(w, http.StatusInternalServerError, "something went wrong")
}

// decodeJSON parses a request body into dst, limiting the body size
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

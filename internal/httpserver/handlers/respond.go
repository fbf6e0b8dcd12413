package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bizcore/internal/apperr"
)

type successEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type errorEnvelope struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, successEnvelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, successEnvelope{Success: true, Message: msg})
}

// respondError renders the uniform error envelope and picks log severity:
// 5xx get error logs, everything else a warn.
func respondError(w http.ResponseWriter, lg *zap.SugaredLogger, r *http.Request, err error) {
	ae := apperr.From(err)
	status := ae.Status()
	if status >= http.StatusInternalServerError {
		lg.Errorw("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		lg.Warnw("request rejected", "path", r.URL.Path, "status", status, "code", ae.Code, "error", ae.Message)
	}
	msg := ae.Message
	if status >= http.StatusInternalServerError {
		// No backend details on the wire.
		msg = "internal server error"
	}
	respondJSON(w, status, errorEnvelope{Error: ae.Code, Message: msg, Errors: ae.Fields})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "bad_request", Message: "invalid JSON body"})
		return false
	}
	return true
}

// decodeOptional tolerates an empty or absent body.
func decodeOptional(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == io.EOF {
		return nil
	}
	return err
}

func uintParam(r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

func intQuery(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func uintQuery(r *http.Request, name string) uint {
	n, _ := strconv.ParseUint(r.URL.Query().Get(name), 10, 64)
	return uint(n)
}

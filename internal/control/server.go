// Package control exposes the bridge's runtime control surface over HTTP:
// reading and changing the level mask, and forcing a full flush.
package control

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/setevik/logbridge/internal/source"
)

// Controller is the slice of the bridge handler the control surface needs.
type Controller interface {
	GetLevel() source.Mask
	SetLevel(config string) error
}

// Server serves the control API for one bridge handler.
type Server struct {
	ctrl  Controller
	flush func()
}

// NewServer creates a control server. flush must perform the full
// three-stage drain.
func NewServer(ctrl Controller, flush func()) *Server {
	return &Server{ctrl: ctrl, flush: flush}
}

// Routes builds the router.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/level", s.getLevel).Methods(http.MethodGet)
	r.HandleFunc("/v1/level", s.setLevel).Methods(http.MethodPut)
	r.HandleFunc("/v1/flush", s.doFlush).Methods(http.MethodPost)
	r.HandleFunc("/v1/healthz", s.healthz).Methods(http.MethodGet)
	return r
}

type levelPayload struct {
	Level string `json:"level"`
}

type errorPayload struct {
	Error string `json:"error"`
	Level string `json:"level,omitempty"`
}

func (s *Server) getLevel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(levelPayload{Level: s.ctrl.GetLevel().String()})
}

func (s *Server) setLevel(w http.ResponseWriter, r *http.Request) {
	var payload levelPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := s.ctrl.SetLevel(payload.Level); err != nil {
		var badLevel *source.BadLogLevelError
		if errors.As(err, &badLevel) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errorPayload{
				Error: "bad_log_level",
				Level: badLevel.Value,
			})
			return
		}
		slog.Error("set-level failed", "error", err)
		http.Error(w, "set-level failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) doFlush(w http.ResponseWriter, r *http.Request) {
	s.flush()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

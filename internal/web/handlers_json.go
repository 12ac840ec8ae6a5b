package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitos/take_profit/internal/domain"
	"go.uber.org/zap"
)

const maxCommandBytes = 4096

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd domain.Command
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cmd); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := s.apply(cmd)
	if err != nil {
		s.logger.Warn("Command rejected", zap.String("type", string(cmd.Type)), zap.Error(err))
		s.writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func statusFor(err error) int {
	if errors.Is(err, domain.ErrUnknownCommand) || errors.Is(err, domain.ErrInvalidCommand) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeJSON encodes before writing the header so an encode failure is a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

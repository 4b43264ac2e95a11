package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// spendRequest is the body of POST /v1/spend.
type spendRequest struct {
	Entity string  `json:"entity"`
	Amount float64 `json:"amount"`
}

// decisionResponse reports the admission decision for an entity.
type decisionResponse struct {
	Entity      string  `json:"entity"`
	Exceeded    bool    `json:"exceeded"`
	WindowSpend float64 `json:"window_spend"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// handleSpend records spend for an entity and returns the admission
// decision. The tracker contract requires non-negative amounts, so this
// boundary rejects negative ones instead of passing them through.
func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	var req spendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Entity == "" {
		writeError(w, http.StatusBadRequest, "entity is required")
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	exceeded := s.registry.RecordSpend(r.Context(), req.Entity, req.Amount)

	writeJSON(w, http.StatusOK, decisionResponse{
		Entity:      req.Entity,
		Exceeded:    exceeded,
		WindowSpend: s.registry.WindowSpend(req.Entity),
	})
}

// handleCheck reports whether an entity currently exceeds its budget.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	entity := r.URL.Query().Get("entity")
	if entity == "" {
		writeError(w, http.StatusBadRequest, "entity is required")
		return
	}

	exceeded := s.registry.Check(entity)

	writeJSON(w, http.StatusOK, decisionResponse{
		Entity:      entity,
		Exceeded:    exceeded,
		WindowSpend: s.registry.WindowSpend(entity),
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

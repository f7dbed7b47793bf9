package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// StatusProvider exposes the guard's per-solver state for the status
// endpoint, without giving the HTTP layer access to the guard's
// mutation methods.
type StatusProvider interface {
	IsAllowed(solver common.Address) (bool, func(success bool))
	StatsFor(solver common.Address) (total, failed uint64)
}

// StatusHandler serves a read-only view of solver guard state.
type StatusHandler struct {
	guard   StatusProvider
	solvers []common.Address
	logger  *zap.Logger
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(guard StatusProvider, solvers []common.Address, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{guard: guard, solvers: solvers, logger: logger}
}

// SolverStatus reports one solver's current guard standing.
type SolverStatus struct {
	Solver      string `json:"solver"`
	Allowed     bool   `json:"allowed"`
	Total       uint64 `json:"total"`
	Failed      uint64 `json:"failed"`
}

// StatusResponse represents the HTTP response for GET /api/solvers.
type StatusResponse struct {
	Solvers []SolverStatus `json:"solvers"`
}

// HandleSolvers handles GET /api/solvers requests.
func (h *StatusHandler) HandleSolvers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	statuses := make([]SolverStatus, 0, len(h.solvers))
	for _, solver := range h.solvers {
		allowed, commit := h.guard.IsAllowed(solver)
		commit(true)
		total, failed := h.guard.StatsFor(solver)
		statuses = append(statuses, SolverStatus{
			Solver:  solver.Hex(),
			Allowed: allowed,
			Total:   total,
			Failed:  failed,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(StatusResponse{Solvers: statuses}); err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *StatusHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"pundit/internal/app"
	"pundit/internal/candidates"
)

// GenerateHandler handles squad generation requests.
type GenerateHandler struct {
	deps Dependencies
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(deps Dependencies) *GenerateHandler {
	return &GenerateHandler{deps: deps}
}

// generateRequest mirrors the request surface: budget plus optional
// season/gameweek selectors and a per-club cap override. Zero values fall
// back to service defaults.
type generateRequest struct {
	Budget     float64 `json:"budget"`
	MaxPerClub int     `json:"max_per_club"`
	Season     string  `json:"season"`
	Gameweek   int     `json:"gameweek"`
}

func (g generateRequest) validate() error {
	switch {
	case g.Budget < 0:
		return fmt.Errorf("%w: budget must not be negative", ErrBadRequest)
	case g.MaxPerClub < 0:
		return fmt.Errorf("%w: max_per_club must not be negative", ErrBadRequest)
	case g.Gameweek < 0:
		return fmt.Errorf("%w: gameweek must not be negative", ErrBadRequest)
	}
	return nil
}

// HandleGenerateTeam handles POST /api/generate-team requests.
func (h *GenerateHandler) HandleGenerateTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.deps.GenerateSquad(r.Context(), app.Request{
		Budget:     req.Budget,
		MaxPerClub: req.MaxPerClub,
		Season:     req.Season,
		Gameweek:   req.Gameweek,
	})
	if err != nil {
		status := http.StatusInternalServerError
		code := "pipeline_failed"
		if errors.Is(err, candidates.ErrSeasonNotFound) || errors.Is(err, candidates.ErrNoData) {
			status = http.StatusNotFound
			code = "no_candidate_data"
		}
		writeError(w, status, code, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ballotbox/internal/election"
	"ballotbox/internal/transport/http/shared"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/requestcontext"
)

type createElectionRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Type           string    `json:"type"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	AllowedRegions []string  `json:"allowedRegions"`
	Constituency   string    `json:"constituency"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

type addCandidateRequest struct {
	Name      string `json:"name"`
	Party     string `json:"party"`
	Biography string `json:"biography"`
	Position  int    `json:"position"`
}

func (h *Handler) handleListElections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.elections.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if elections == nil {
		elections = []*election.Election{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"elections": elections})
}

func (h *Handler) handleGetElection(w http.ResponseWriter, r *http.Request) {
	e, err := h.elections.Get(r.Context(), chi.URLParam(r, "electionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.elections.Candidates(r.Context(), chi.URLParam(r, "electionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if candidates == nil {
		candidates = []*election.Candidate{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

// handleCreateElection registers a new scheduled election. Admin only.
func (h *Handler) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	e, err := h.elections.Create(ctx, election.CreateParams{
		Title:          req.Title,
		Description:    req.Description,
		Type:           election.Type(req.Type),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		AllowedRegions: req.AllowedRegions,
		Constituency:   req.Constituency,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "election creation rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, e)
}

// handleTransition applies an admin status change under the machine rules.
func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	e, err := h.elections.Transition(r.Context(), chi.URLParam(r, "electionID"), election.Status(req.Status))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, e)
}

// handleApproveResults flips the results-approval flag once the election has
// closed.
func (h *Handler) handleApproveResults(w http.ResponseWriter, r *http.Request) {
	e, err := h.elections.ApproveResults(r.Context(), chi.URLParam(r, "electionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, e)
}

// handleAddCandidate registers a candidate on a scheduled election.
func (h *Handler) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	var req addCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	c, err := h.elections.AddCandidate(r.Context(), election.CandidateParams{
		ElectionID: chi.URLParam(r, "electionID"),
		Name:       req.Name,
		Party:      req.Party,
		Biography:  req.Biography,
		Position:   req.Position,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, c)
}

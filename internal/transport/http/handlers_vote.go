package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ballotbox/internal/ballot"
	"ballotbox/internal/transport/http/shared"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/requestcontext"
)

type castRequest struct {
	CandidateID string `json:"candidateId"`
}

type castResponse struct {
	CastAt time.Time `json:"castAt"`
}

type voteStatusResponse struct {
	ElectionID string `json:"electionId"`
	HasVoted   bool   `json:"hasVoted"`
}

// handleCastVote records one ballot for the authenticated voter.
func (h *Handler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID := chi.URLParam(r, "electionID")

	var req castRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.CandidateID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "candidateId is required"))
		return
	}

	receipt, err := h.ledger.Cast(ctx, electionID, req.CandidateID)
	if err != nil {
		h.logger.WarnContext(ctx, "cast rejected",
			"request_id", requestcontext.RequestID(ctx),
			"election_id", electionID,
			"reason", dErrors.ReasonOf(err),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, castResponse{CastAt: receipt.CastAt})
}

// handleVoteStatus reports whether the authenticated voter has a vote record
// for the election. Existence only; the ballot stays secret.
func (h *Handler) handleVoteStatus(w http.ResponseWriter, r *http.Request) {
	electionID := chi.URLParam(r, "electionID")

	voted, err := h.ledger.HasVoted(r.Context(), electionID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, voteStatusResponse{ElectionID: electionID, HasVoted: voted})
}

// handleVotingHistory returns the authenticated voter's own history, newest
// first.
func (h *Handler) handleVotingHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.History(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []ballot.HistoryEntry{}
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"history": entries})
}

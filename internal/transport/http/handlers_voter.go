package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ballotbox/internal/transport/http/shared"
	"ballotbox/internal/voter"
	dErrors "ballotbox/pkg/domain-errors"
)

type registerRequest struct {
	State        string `json:"state"`
	District     string `json:"district"`
	Ward         string `json:"ward"`
	Constituency string `json:"constituency"`
}

// handleRegisterVoter creates a voter record for the authenticated subject.
// New voters start unverified; an admin verifies them before they can cast.
func (h *Handler) handleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	v, err := h.voters.Register(r.Context(), voter.Region{
		State:        req.State,
		District:     req.District,
		Ward:         req.Ward,
		Constituency: req.Constituency,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	v, err := h.voters.Me(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, v)
}

// handleVerifyVoter is the administrative verification action.
func (h *Handler) handleVerifyVoter(w http.ResponseWriter, r *http.Request) {
	v, err := h.voters.Verify(r.Context(), chi.URLParam(r, "voterID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, v)
}

package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ballotbox/internal/transport/http/shared"
)

// handleResults serves the ranked projection for a closed election. The
// results service enforces visibility; the handler only shapes the response.
func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	summary, err := h.results.Results(r.Context(), chi.URLParam(r, "electionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, summary)
}

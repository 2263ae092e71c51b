// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services and never embed business logic.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ballotbox/internal/ballot"
	"ballotbox/internal/election"
	"ballotbox/internal/identity"
	"ballotbox/internal/platform/middleware"
	"ballotbox/internal/results"
	"ballotbox/internal/transport/http/shared"
	"ballotbox/internal/voter"
)

// Ledger is the casting surface the transport needs.
type Ledger interface {
	Cast(ctx context.Context, electionID, candidateID string) (*ballot.Receipt, error)
	HasVoted(ctx context.Context, electionID string) (bool, error)
	History(ctx context.Context) ([]ballot.HistoryEntry, error)
}

// ElectionService is the election surface the transport needs.
type ElectionService interface {
	Create(ctx context.Context, p election.CreateParams) (*election.Election, error)
	Get(ctx context.Context, id string) (*election.Election, error)
	List(ctx context.Context) ([]*election.Election, error)
	Transition(ctx context.Context, id string, next election.Status) (*election.Election, error)
	ApproveResults(ctx context.Context, id string) (*election.Election, error)
	AddCandidate(ctx context.Context, p election.CandidateParams) (*election.Candidate, error)
	Candidates(ctx context.Context, electionID string) ([]*election.Candidate, error)
}

// VoterService is the voter surface the transport needs.
type VoterService interface {
	Register(ctx context.Context, region voter.Region) (*voter.Voter, error)
	Verify(ctx context.Context, voterID string) (*voter.Voter, error)
	Me(ctx context.Context) (*voter.Voter, error)
}

// ResultsService serves gated result projections.
type ResultsService interface {
	Results(ctx context.Context, electionID string) (*results.Summary, error)
}

// HealthChecker reports a dependency's liveness for /healthz.
type HealthChecker func(ctx context.Context) error

// Handler holds the wired services for all routes.
type Handler struct {
	ledger    Ledger
	elections ElectionService
	voters    VoterService
	results   ResultsService
	verifier  identity.Verifier
	logger    *slog.Logger
	health    map[string]HealthChecker
}

func NewHandler(
	ledger Ledger,
	elections ElectionService,
	voters VoterService,
	resultsSvc ResultsService,
	verifier identity.Verifier,
	logger *slog.Logger,
	health map[string]HealthChecker,
) *Handler {
	return &Handler{
		ledger:    ledger,
		elections: elections,
		voters:    voters,
		results:   resultsSvc,
		verifier:  verifier,
		logger:    logger,
		health:    health,
	}
}

// NewRouter wires all endpoints behind the standard middleware chain.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Metadata)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireAuth(h.verifier, h.logger))

		api.Route("/elections", func(elections chi.Router) {
			elections.Get("/", h.handleListElections)
			elections.Get("/{electionID}", h.handleGetElection)
			elections.Get("/{electionID}/candidates", h.handleListCandidates)
			elections.Get("/{electionID}/results", h.handleResults)
			elections.Get("/{electionID}/vote-status", h.handleVoteStatus)
			elections.Post("/{electionID}/vote", h.handleCastVote)
		})

		api.Route("/voters", func(voters chi.Router) {
			voters.Post("/register", h.handleRegisterVoter)
			voters.Get("/me", h.handleMe)
			voters.Get("/me/history", h.handleVotingHistory)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin(h.logger))
			admin.Post("/elections", h.handleCreateElection)
			admin.Post("/elections/{electionID}/status", h.handleTransition)
			admin.Post("/elections/{electionID}/approve-results", h.handleApproveResults)
			admin.Post("/elections/{electionID}/candidates", h.handleAddCandidate)
			admin.Post("/voters/{voterID}/verify", h.handleVerifyVoter)
		})
	})

	return r
}

// handleHealth pings every registered dependency. Degraded dependencies are
// reported by name with a 503.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.health))
	for name, check := range h.health {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	shared.WriteJSON(w, status, map[string]any{
		"status": http.StatusText(status),
		"checks": checks,
	})
}

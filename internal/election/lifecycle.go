package election

import (
	"time"

	dErrors "ballotbox/pkg/domain-errors"
)

// Stable reasons for lifecycle rejections. Callers present these to voters,
// so each failing check reports its own reason rather than a generic one.
const (
	ReasonNotActive       = "not-active"
	ReasonNotStarted      = "not-started"
	ReasonEnded           = "ended"
	ReasonNotClosed       = "not-closed"
	ReasonPendingApproval = "pending-approval"
)

// ValidateForCasting reports whether a ballot may be cast right now.
// Checks run in order: status, start date, end date. Status and the time
// window are independent: an election can be date-expired yet still
// status=active until an admin closes it, and that degraded case reports
// "ended", not "not-active".
func ValidateForCasting(e *Election, now time.Time) error {
	if e.Status != StatusActive {
		return dErrors.New(dErrors.CodeConflict, "election is not active").WithReason(ReasonNotActive)
	}
	if now.Before(e.StartDate) {
		return dErrors.New(dErrors.CodeConflict, "election has not started").WithReason(ReasonNotStarted)
	}
	if now.After(e.EndDate) {
		return dErrors.New(dErrors.CodeConflict, "election has ended").WithReason(ReasonEnded)
	}
	return nil
}

// ValidateForResults reports whether results are visible to the caller.
// Results open when the election has ended or completed; non-admins
// additionally wait for the explicit approval flag and receive a distinct
// pending-approval reason when only that is missing.
func ValidateForResults(e *Election, now time.Time, isAdmin bool) error {
	closed := e.Status == StatusCompleted || !e.EndDate.After(now)
	if !closed {
		return dErrors.New(dErrors.CodeConflict, "results are not available until the election closes").WithReason(ReasonNotClosed)
	}
	if isAdmin || e.ResultsApproved {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "results are pending approval").WithReason(ReasonPendingApproval)
}

package voter

import (
	"slices"

	"ballotbox/internal/election"
)

// Eligible decides whether a voter may participate in an election. Pure
// function over the provided data: no store access, no clock, identical
// results for identical inputs.
//
// Verification gates everything: an unverified or ineligible voter fails
// before any regional policy runs. Unknown election types fail closed.
func Eligible(v *Voter, e *election.Election) bool {
	if v == nil || e == nil {
		return false
	}
	if !v.IsVerified || !v.IsEligible {
		return false
	}

	switch e.Type {
	case election.TypeNational, election.TypeGeneral, "":
		return true
	case election.TypeState:
		return eligibleForState(v, e)
	case election.TypeLocal:
		return eligibleForLocal(v, e)
	default:
		return false
	}
}

func eligibleForState(v *Voter, e *election.Election) bool {
	if v.Region.State == "" || len(e.AllowedRegions) == 0 {
		return false
	}
	if !slices.Contains(e.AllowedRegions, v.Region.State) {
		return false
	}
	if e.Constituency != "" && v.Region.Constituency != e.Constituency {
		return false
	}
	return true
}

// eligibleForLocal accepts three match forms against allowedRegions: the
// district, the ward, or the composite "district-ward". The breadth is
// intentional to tolerate differing region-naming granularity.
func eligibleForLocal(v *Voter, e *election.Election) bool {
	if v.Region.District == "" || v.Region.Ward == "" || len(e.AllowedRegions) == 0 {
		return false
	}
	composite := v.Region.District + "-" + v.Region.Ward
	return slices.Contains(e.AllowedRegions, v.Region.District) ||
		slices.Contains(e.AllowedRegions, v.Region.Ward) ||
		slices.Contains(e.AllowedRegions, composite)
}

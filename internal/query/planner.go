// Package query provides a capability-checked query planner.
//
// Call sites declare the filter and order they need once. If the store can
// serve the plan directly (indexed SQL, for instance) its result is used
// as-is; if it reports the plan unsupported or the indexed query fails, the
// planner materializes the full set and applies identical filter/sort/limit
// semantics in memory. Callers never observe which path ran.
package query

import (
	"context"
	"sort"
)

// Plan describes the shape of results a call site needs. It is opaque to the
// planner and interpreted only by stores that can push it down.
type Plan struct {
	// Name identifies the logical query for store-side pushdown and logging.
	Name string
	// Limit truncates results after ordering; 0 means no limit.
	Limit int
}

// Source abstracts a store's ability to serve a plan.
//
// Query attempts the pushed-down (indexed) path and may return
// sentinel.ErrUnsupported, or any other error when the backing index is
// missing. Scan returns the unfiltered superset for the fallback path.
type Source[T any] interface {
	Query(ctx context.Context, plan Plan) ([]T, error)
	Scan(ctx context.Context) ([]T, error)
}

// Fallback reports whether the degraded path served the last Execute call.
// Exposed so callers can count degraded queries without the planner knowing
// about metrics.
type Result[T any] struct {
	Items    []T
	Degraded bool
}

// Execute runs plan against src. match selects items and cmp orders them
// (negative when a sorts before b); both must encode exactly the semantics the
// pushed-down query promises, since the fallback path relies on them alone.
func Execute[T any](ctx context.Context, src Source[T], plan Plan, match func(T) bool, cmp func(a, b T) int) (Result[T], error) {
	items, err := src.Query(ctx, plan)
	if err == nil {
		return Result[T]{Items: items}, nil
	}

	all, scanErr := src.Scan(ctx)
	if scanErr != nil {
		return Result[T]{}, scanErr
	}

	filtered := make([]T, 0, len(all))
	for _, item := range all {
		if match == nil || match(item) {
			filtered = append(filtered, item)
		}
	}
	if cmp != nil {
		// Stable keeps input order for equal keys, matching indexed ORDER BY
		// over a deterministic tie-break.
		sort.SliceStable(filtered, func(i, j int) bool {
			return cmp(filtered[i], filtered[j]) < 0
		})
	}
	if plan.Limit > 0 && len(filtered) > plan.Limit {
		filtered = filtered[:plan.Limit]
	}
	return Result[T]{Items: filtered, Degraded: true}, nil
}

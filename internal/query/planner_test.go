package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotbox/pkg/platform/sentinel"
)

type row struct {
	ID    string
	Group string
	Rank  int
}

// fakeSource serves Query from indexed when capable, otherwise reports the
// plan unsupported and exposes rows for the scan path.
type fakeSource struct {
	rows    []row
	capable bool
	queryFn func(Plan) ([]row, error)
	scanErr error
}

func (f *fakeSource) Query(_ context.Context, plan Plan) ([]row, error) {
	if !f.capable {
		return nil, sentinel.ErrUnsupported
	}
	return f.queryFn(plan)
}

func (f *fakeSource) Scan(_ context.Context) ([]row, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.rows, nil
}

var testRows = []row{
	{ID: "a", Group: "g1", Rank: 2},
	{ID: "b", Group: "g2", Rank: 9},
	{ID: "c", Group: "g1", Rank: 5},
	{ID: "d", Group: "g1", Rank: 5},
	{ID: "e", Group: "g1", Rank: 1},
}

func matchG1(r row) bool { return r.Group == "g1" }

func byRankDesc(a, b row) int { return b.Rank - a.Rank }

// indexedG1ByRankDesc mimics what an indexed query would return for the same
// underlying data: group=g1, rank descending, ties in input order.
func indexedG1ByRankDesc(limit int) []row {
	out := []row{
		{ID: "c", Group: "g1", Rank: 5},
		{ID: "d", Group: "g1", Rank: 5},
		{ID: "a", Group: "g1", Rank: 2},
		{ID: "e", Group: "g1", Rank: 1},
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func TestExecuteIndexedPath(t *testing.T) {
	src := &fakeSource{
		rows:    testRows,
		capable: true,
		queryFn: func(plan Plan) ([]row, error) { return indexedG1ByRankDesc(plan.Limit), nil },
	}

	res, err := Execute(context.Background(), src, Plan{Name: "g1_by_rank"}, matchG1, byRankDesc)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, indexedG1ByRankDesc(0), res.Items)
}

func TestExecuteDegradedEquivalence(t *testing.T) {
	// Same data, no index capability: the fallback must return the identical
	// element set in the identical order.
	src := &fakeSource{rows: testRows, capable: false}

	res, err := Execute(context.Background(), src, Plan{Name: "g1_by_rank"}, matchG1, byRankDesc)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, indexedG1ByRankDesc(0), res.Items)
}

func TestExecuteDegradedLimit(t *testing.T) {
	src := &fakeSource{rows: testRows, capable: false}

	res, err := Execute(context.Background(), src, Plan{Name: "g1_by_rank", Limit: 2}, matchG1, byRankDesc)
	require.NoError(t, err)
	assert.Equal(t, indexedG1ByRankDesc(2), res.Items)
}

func TestExecuteFallbackOnIndexedFailure(t *testing.T) {
	// An indexed query failing at runtime (missing index) must degrade, not
	// surface the error.
	src := &fakeSource{
		rows:    testRows,
		capable: true,
		queryFn: func(Plan) ([]row, error) { return nil, errors.New("no supporting index") },
	}

	res, err := Execute(context.Background(), src, Plan{Name: "g1_by_rank"}, matchG1, byRankDesc)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, indexedG1ByRankDesc(0), res.Items)
}

func TestExecuteScanFailureSurfaces(t *testing.T) {
	src := &fakeSource{capable: false, scanErr: errors.New("store down")}

	_, err := Execute(context.Background(), src, Plan{Name: "g1_by_rank"}, matchG1, byRankDesc)
	assert.Error(t, err)
}

func TestExecuteNilMatchAndCmp(t *testing.T) {
	src := &fakeSource{rows: testRows, capable: false}

	res, err := Execute[row](context.Background(), src, Plan{Name: "all"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, testRows, res.Items)
}

package harvest

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmorand/tmharvest/internal/record"
	"github.com/cmorand/tmharvest/internal/store"
)

// fakeStrategy scripts per-id outcomes and records every fetch.
type fakeStrategy struct {
	fetched []int
	fn      func(id int) (*record.Record, error)
}

func (f *fakeStrategy) Fetch(_ context.Context, id int) (*record.Record, error) {
	f.fetched = append(f.fetched, id)
	return f.fn(id)
}

func okRecord(id int) *record.Record {
	return record.New(id, "https://example.org/text/1")
}

func TestIDRange(t *testing.T) {
	tests := []struct {
		name  string
		start int
		end   int
		want  []int
	}{
		{name: "ascending", start: 3, end: 6, want: []int{3, 4, 5, 6}},
		{name: "descending", start: 10, end: 5, want: []int{10, 9, 8, 7, 6, 5}},
		{name: "single id", start: 4, end: 4, want: []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IDRange(tt.start, tt.end))
		})
	}
}

func TestRun_CountersPartitionTheRange(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)

	strategy := &fakeStrategy{fn: func(id int) (*record.Record, error) {
		switch id {
		case 1:
			return okRecord(id), nil
		case 2:
			return nil, nil // no record at the source
		case 3:
			return nil, errors.New("connection reset")
		default:
			rec := okRecord(id)
			rec.MarkError(errors.New("section people: page load failed"))
			return rec, nil
		}
	}}

	runner := New(strategy, st, Options{Start: 1, End: 4})
	stats, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Stats{Ok: 1, Missing: 1, Skipped: 0, Failed: 2}, stats)
	assert.Equal(t, 4, stats.Total(), "counters must sum to the ids processed")

	// Only the successful record reaches the store.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "id_1.json", entries[0].Name())
}

func TestRun_ResumeSkipsWithoutFetching(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)

	// First run persists ids 1..3.
	first := &fakeStrategy{fn: func(id int) (*record.Record, error) { return okRecord(id), nil }}
	_, err := New(first, st, Options{Start: 1, End: 3}).Run(context.Background())
	require.NoError(t, err)

	before, err := os.ReadFile(st.Path(2))
	require.NoError(t, err)

	// Second run over the same range must not refetch anything.
	second := &fakeStrategy{fn: func(id int) (*record.Record, error) { return okRecord(id), nil }}
	stats, err := New(second, st, Options{Start: 1, End: 3, Resume: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, second.fetched, "resume must skip persisted ids without network fetches")
	assert.Equal(t, Stats{Skipped: 3}, stats)

	after, err := os.ReadFile(st.Path(2))
	require.NoError(t, err)
	assert.Equal(t, before, after, "output files must be byte-identical across resumed runs")
}

func TestRun_ResumeDisabledRefetches(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)

	strategy := &fakeStrategy{fn: func(id int) (*record.Record, error) { return okRecord(id), nil }}
	_, err := New(strategy, st, Options{Start: 1, End: 2}).Run(context.Background())
	require.NoError(t, err)

	stats, err := New(strategy, st, Options{Start: 1, End: 2}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Ok: 2}, stats)
	assert.Equal(t, []int{1, 2, 1, 2}, strategy.fetched)
}

func TestRun_DescendingRangeVisitsInOrder(t *testing.T) {
	st := store.New(t.TempDir())

	strategy := &fakeStrategy{fn: func(int) (*record.Record, error) { return nil, nil }}
	stats, err := New(strategy, st, Options{Start: 10, End: 5}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{10, 9, 8, 7, 6, 5}, strategy.fetched)
	assert.Equal(t, Stats{Missing: 6}, stats)
}

func TestRun_CancellationStopsBetweenIterations(t *testing.T) {
	st := store.New(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	strategy := &fakeStrategy{fn: func(id int) (*record.Record, error) {
		if id == 2 {
			cancel()
		}
		return okRecord(id), nil
	}}

	stats, err := New(strategy, st, Options{Start: 1, End: 5}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// id 2 completed before the cancellation took effect; id 3 never ran.
	assert.Equal(t, []int{1, 2}, strategy.fetched)
	assert.Equal(t, Stats{Ok: 2}, stats)
}

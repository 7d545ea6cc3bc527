package recorder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sortscope/pkg/recorder"
)

func TestCompact_ExpandRebuildsHistory(t *testing.T) {
	t.Parallel()

	rec := recorder.New(recorder.WithSeed[int](testSeed))
	_, err := rec.Generate(17, 5, 100)
	require.NoError(t, err)

	h := rec.Sort()

	tr, err := recorder.Compact(h)
	require.NoError(t, err)
	assert.Len(t, tr.Writes, h.Steps())

	rebuilt, err := tr.Expand()
	require.NoError(t, err)
	assert.Equal(t, h, rebuilt)

	last, _ := h.Last()
	assert.Equal(t, last.Values, tr.Final())
}

func TestCompact_SingleSnapshot(t *testing.T) {
	t.Parallel()

	rec := recorder.New[int]()

	tr, err := recorder.Compact(rec.Sort())
	require.NoError(t, err)
	assert.Empty(t, tr.Initial)
	assert.Empty(t, tr.Writes)

	rebuilt, err := tr.Expand()
	require.NoError(t, err)
	require.Len(t, rebuilt, 1)
}

func TestCompact_Errors(t *testing.T) {
	t.Parallel()

	_, err := recorder.Compact(recorder.History[int]{})
	require.ErrorIs(t, err, recorder.ErrEmptyHistory)

	twoWrites := recorder.History[int]{
		{Values: []int{2, 1}, Active: []int{}},
		{Values: []int{1, 2}, Active: []int{0, 1}},
	}

	_, err = recorder.Compact(twoWrites)
	require.ErrorIs(t, err, recorder.ErrNotCompactable)

	hiddenChange := recorder.History[int]{
		{Values: []int{2, 1}, Active: []int{}},
		{Values: []int{1, 2}, Active: []int{0}},
	}

	_, err = recorder.Compact(hiddenChange)
	require.ErrorIs(t, err, recorder.ErrNotCompactable)

	outOfRange := recorder.History[int]{
		{Values: []int{2, 1}, Active: []int{}},
		{Values: []int{2, 1}, Active: []int{4}},
	}

	_, err = recorder.Compact(outOfRange)
	require.ErrorIs(t, err, recorder.ErrWriteOutOfRange)
}

func TestTrace_ExpandRejectsBadIndex(t *testing.T) {
	t.Parallel()

	tr := recorder.Trace[int]{
		Initial: []int{1, 2},
		Writes:  []recorder.Write[int]{{Index: 2, Value: 9}},
	}

	_, err := tr.Expand()
	require.ErrorIs(t, err, recorder.ErrWriteOutOfRange)
}

func TestFootprintEstimates(t *testing.T) {
	t.Parallel()

	assert.Greater(t, recorder.HistoryBytes[int](30), recorder.TraceBytes[int](30))
	assert.Greater(t, recorder.HistoryBytes[int](1000), 100*recorder.HistoryBytes[int](30))
	assert.Less(t, recorder.HistoryBytes[int8](30), recorder.HistoryBytes[int64](30))
}

func TestCompactStream_MatchesCompactWithoutRetention(t *testing.T) {
	t.Parallel()

	values := []int{42, 7, 7, 99, 13, 0, 56, 21, 8}

	full := recorder.New[int]()
	full.Load(values)

	want, err := recorder.Compact(full.Sort())
	require.NoError(t, err)

	streamed := recorder.New(recorder.WithRetention[int](false))
	streamed.Load(values)

	got, err := recorder.CompactStream(streamed.Stream())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Len(t, streamed.History(), 1)
	assert.Equal(t, full.Values(), streamed.Values())
}

func TestCompactStream_StopsOnBadSnapshot(t *testing.T) {
	t.Parallel()

	pulled := 0
	seq := func(yield func(int, recorder.Snapshot[int]) bool) {
		snaps := []recorder.Snapshot[int]{
			{Values: []int{3, 1}, Active: []int{}},
			{Values: []int{1, 1}, Active: []int{0}},
			{Values: []int{1, 9}, Active: []int{0}},
			{Values: []int{1, 3}, Active: []int{1}},
		}

		for i, snap := range snaps {
			pulled++

			if !yield(i, snap) {
				return
			}
		}
	}

	_, err := recorder.CompactStream(seq)
	require.ErrorIs(t, err, recorder.ErrNotCompactable)
	assert.Equal(t, 3, pulled)
}

func TestCompactStream_Empty(t *testing.T) {
	t.Parallel()

	_, err := recorder.CompactStream(func(func(int, recorder.Snapshot[int]) bool) {})
	require.ErrorIs(t, err, recorder.ErrEmptyHistory)
}

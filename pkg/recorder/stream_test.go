package recorder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sortscope/pkg/recorder"
)

func collect[T recorder.Number](rec *recorder.Recorder[T]) recorder.History[T] {
	var out recorder.History[T]

	for _, snap := range rec.Stream() {
		out = append(out, snap)
	}

	return out
}

func TestStream_MatchesSort(t *testing.T) {
	t.Parallel()

	for n := range 20 {
		seed := uint64(n) * 31

		eager := recorder.New(recorder.WithSeed[int](seed))
		_, err := eager.Generate(n, 5, 100)
		require.NoError(t, err)

		lazy := recorder.New(recorder.WithSeed[int](seed))
		_, err = lazy.Generate(n, 5, 100)
		require.NoError(t, err)

		want := eager.Sort()
		got := collect(lazy)

		require.Equal(t, want, got, "length %d", n)
		assert.Equal(t, want, lazy.History())
		assert.Equal(t, eager.Values(), lazy.Values())
	}
}

func TestStream_StepNumbersAreSequential(t *testing.T) {
	t.Parallel()

	rec := recorder.New[int]()
	rec.Load([]int{4, 3, 2, 1})

	expected := 0

	for step := range rec.Stream() {
		assert.Equal(t, expected, step)
		expected++
	}

	assert.Equal(t, recorder.Placements(4)+1, expected)
}

func TestStream_AbortYieldsPrefix(t *testing.T) {
	t.Parallel()

	values := []int{9, 4, 7, 1, 8, 2, 6, 3, 5}

	full := recorder.New[int]()
	full.Load(values)
	want := full.Sort()

	for pulls := 1; pulls <= len(want); pulls++ {
		rec := recorder.New[int]()
		rec.Load(values)

		var got recorder.History[int]

		for _, snap := range rec.Stream() {
			got = append(got, snap)
			if len(got) == pulls {
				break
			}
		}

		require.Equal(t, want[:pulls], got, "pulls=%d", pulls)
		assert.Equal(t, want[:pulls], rec.History(), "retained history must be the same prefix")
		assert.Equal(t, got[len(got)-1].Values, rec.Values(), "working sequence matches the last pulled snapshot")
	}
}

func TestStream_AbandonedRecorderCanReload(t *testing.T) {
	t.Parallel()

	rec := recorder.New[int]()
	rec.Load([]int{3, 2, 1})

	for step := range rec.Stream() {
		if step == 2 {
			break
		}
	}

	rec.Load([]int{2, 1})

	h := rec.Sort()
	require.Len(t, h, 3)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, last.Values)
}

func TestStream_WithoutRetentionKeepsOnlyInitial(t *testing.T) {
	t.Parallel()

	rec := recorder.New(recorder.WithRetention[int](false))
	rec.Load([]int{6, 5, 4, 3, 2, 1})

	got := collect(rec)

	assert.Len(t, got, recorder.Placements(6)+1)
	assert.Len(t, rec.History(), 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, rec.Values())
}

func TestStream_KeepPolicyReplaysPrefix(t *testing.T) {
	t.Parallel()

	rec := recorder.New(recorder.WithResetOnSort[int](false))
	rec.Load([]int{2, 1})

	first := rec.Sort()
	second := collect(rec)

	require.Len(t, second, len(first)+recorder.Placements(2))
	assert.Equal(t, first, second[:len(first)])
}

func TestStream_Empty(t *testing.T) {
	t.Parallel()

	rec := recorder.New[int]()

	got := collect(rec)

	require.Len(t, got, 1)
	assert.Empty(t, got[0].Values)
}

func TestStreamContext_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := recorder.New[int]()
	rec.Load([]int{8, 7, 6, 5, 4, 3, 2, 1})

	seen := 0

	for range rec.StreamContext(ctx) {
		seen++

		if seen == 3 {
			cancel()
		}
	}

	assert.Equal(t, 3, seen)
	assert.Len(t, rec.History(), 3)
}

func TestStreamContext_MatchesStream(t *testing.T) {
	t.Parallel()

	rec := recorder.New(recorder.WithSeed[int](testSeed))

	_, err := rec.Generate(17, 5, 100)
	require.NoError(t, err)

	want := rec.Sort()

	rec.Load(want[0].Values)

	got := make(recorder.History[int], 0, len(want))
	for _, snap := range rec.StreamContext(context.Background()) {
		got = append(got, snap)
	}

	assert.Equal(t, want, got)
}

// Package recorder sorts a working sequence with top-down merge sort and
// records a snapshot of the whole sequence after every single write, so the
// resulting history can be replayed frame by frame.
//
// A Recorder is owned by exactly one session. It is not safe for concurrent
// use and is never shared: construct one with New for every use.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
)

// Default generation parameters used by drivers.
const (
	DefaultCount = 30
	DefaultMin   = 5
	DefaultMax   = 100
)

// Sentinel configuration errors returned by Generate.
var (
	ErrInvalidConfig = errors.New("invalid generation config")
	ErrInvalidCount  = fmt.Errorf("%w: count must not be negative", ErrInvalidConfig)
	ErrInvalidBounds = fmt.Errorf("%w: min must be below max", ErrInvalidConfig)
)

// Option configures a Recorder.
type Option[T Number] func(*Recorder[T])

// WithResetOnSort selects the history policy of Sort and Stream. When true
// (the default) every sort starts a new history holding only the current
// state. When false the existing history is kept as a prefix.
func WithResetOnSort[T Number](reset bool) Option[T] {
	return func(r *Recorder[T]) {
		r.resetOnSort = reset
	}
}

// WithRetention controls whether Stream appends the snapshots it yields to
// the recorder's history. Disabling it keeps memory flat for long runs;
// Sort always retains.
func WithRetention[T Number](retain bool) Option[T] {
	return func(r *Recorder[T]) {
		r.retain = retain
	}
}

// WithSampler replaces the data generator used by Generate.
func WithSampler[T Number](sampler Sampler[T]) Option[T] {
	return func(r *Recorder[T]) {
		r.sampler = sampler
	}
}

// WithSeed makes Generate deterministic.
func WithSeed[T Number](seed uint64) Option[T] {
	return WithSampler[T](NewSeededSampler[T](seed))
}

// Recorder owns a working sequence and the history of its snapshots.
type Recorder[T Number] struct {
	data    []T
	history History[T]
	sampler Sampler[T]

	resetOnSort bool
	retain      bool
}

// New creates an empty recorder. Sorting it before Generate or Load sorts an
// empty sequence.
func New[T Number](opts ...Option[T]) *Recorder[T] {
	r := &Recorder[T]{
		resetOnSort: true,
		retain:      true,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.sampler == nil {
		r.sampler = newRandomSampler[T]()
	}

	return r
}

// Generate replaces the working sequence with count uniform draws from
// [lo, hi] and resets the history to a single initial snapshot.
// It returns a copy of the new sequence. On error the recorder is unchanged.
func (r *Recorder[T]) Generate(count int, lo, hi T) ([]T, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	if !(lo < hi) {
		return nil, fmt.Errorf("%w: min %v, max %v", ErrInvalidBounds, lo, hi)
	}

	r.reset(r.sampler.Sample(count, lo, hi))

	return r.Values(), nil
}

// Load replaces the working sequence with a copy of values and resets the
// history to a single initial snapshot.
func (r *Recorder[T]) Load(values []T) {
	r.reset(slices.Clone(values))
}

func (r *Recorder[T]) reset(values []T) {
	if values == nil {
		values = []T{}
	}

	r.data = values
	r.history = History[T]{newSnapshot(r.data)}
}

// Values returns a copy of the working sequence.
func (r *Recorder[T]) Values() []T {
	if r.data == nil {
		return []T{}
	}

	return slices.Clone(r.data)
}

// Len returns the length of the working sequence.
func (r *Recorder[T]) Len() int {
	return len(r.data)
}

// History returns a copy of the recorded history.
func (r *Recorder[T]) History() History[T] {
	return r.history.Clone()
}

// ResetOnSort reports the history policy of the recorder.
func (r *Recorder[T]) ResetOnSort() bool {
	return r.resetOnSort
}

// Sort sorts the working sequence in non-decreasing order and returns the
// full history, one snapshot per write after the initial one.
func (r *Recorder[T]) Sort() History[T] {
	r.begin()

	s := r.newSorter(func(snap Snapshot[T]) bool {
		r.history = append(r.history, snap)

		return true
	})
	s.sortRange(0, len(r.data)-1)

	return r.History()
}

// Stream sorts lazily. It yields, numbered from 0, exactly the snapshots
// Sort would return, suspending the sort after each one. Breaking out of the
// loop abandons the sort: the snapshots seen so far are a prefix of the
// uninterrupted run and the working sequence matches the last of them.
func (r *Recorder[T]) Stream() iter.Seq2[int, Snapshot[T]] {
	return func(yield func(int, Snapshot[T]) bool) {
		r.begin()

		step := 0

		for _, snap := range r.History() {
			if !yield(step, snap) {
				return
			}

			step++
		}

		s := r.newSorter(func(snap Snapshot[T]) bool {
			if r.retain {
				r.history = append(r.history, snap)
			}

			ok := yield(step, snap)
			step++

			return ok
		})
		s.sortRange(0, len(r.data)-1)
	}
}

// StreamContext is Stream bound to ctx: it stops pulling snapshots, and so
// abandons the sort, once ctx is done.
func (r *Recorder[T]) StreamContext(ctx context.Context) iter.Seq2[int, Snapshot[T]] {
	return func(yield func(int, Snapshot[T]) bool) {
		for i, snap := range r.Stream() {
			if ctx.Err() != nil || !yield(i, snap) {
				return
			}
		}
	}
}

// begin applies the history policy before a sort.
func (r *Recorder[T]) begin() {
	if r.data == nil {
		r.data = []T{}
	}

	if r.resetOnSort || len(r.history) == 0 {
		r.history = History[T]{newSnapshot(r.data)}
	}
}

func (r *Recorder[T]) newSorter(emit func(Snapshot[T]) bool) *sorter[T] {
	return &sorter[T]{data: r.data, emit: emit}
}

// sorter runs one merge sort over data, emitting a snapshot per write.
// Merges never interleave, so the two scratch buffers are reused.
type sorter[T Number] struct {
	data    []T
	emit    func(Snapshot[T]) bool
	left    []T
	right   []T
	stopped bool
}

func (s *sorter[T]) sortRange(lo, hi int) {
	if lo >= hi || s.stopped {
		return
	}

	mid := lo + (hi-lo)/2

	s.sortRange(lo, mid)
	s.sortRange(mid+1, hi)
	s.merge(lo, mid, hi)
}

func (s *sorter[T]) merge(lo, mid, hi int) {
	if s.stopped {
		return
	}

	s.left = append(s.left[:0], s.data[lo:mid+1]...)
	s.right = append(s.right[:0], s.data[mid+1:hi+1]...)

	left, right := s.left, s.right
	i, j, k := 0, 0, lo

	for i < len(left) && j < len(right) {
		// Ties go left to keep the sort stable.
		if left[i] <= right[j] {
			s.data[k] = left[i]
			i++
		} else {
			s.data[k] = right[j]
			j++
		}

		if !s.place(k) {
			return
		}

		k++
	}

	for ; i < len(left); i++ {
		s.data[k] = left[i]
		if !s.place(k) {
			return
		}

		k++
	}

	for ; j < len(right); j++ {
		s.data[k] = right[j]
		if !s.place(k) {
			return
		}

		k++
	}
}

// place records the write at k and reports whether sorting should continue.
func (s *sorter[T]) place(k int) bool {
	if !s.emit(newSnapshot(s.data, k)) {
		s.stopped = true

		return false
	}

	return true
}

// Placements returns the number of element writes merge sort performs on a
// sequence of length n, which is the number of snapshots a reset sort
// records after the initial one.
func Placements(n int) int {
	if n <= 1 {
		return 0
	}

	left := (n + 1) / 2

	return n + Placements(left) + Placements(n-left)
}

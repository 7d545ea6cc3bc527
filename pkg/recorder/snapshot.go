package recorder

import "slices"

// Number is the set of element types the recorder can sort. Float values
// must not be NaN: the merge relies on a total order.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Snapshot is an immutable capture of the working sequence.
// Active lists, in ascending order, the positions written by the mutation that
// produced the snapshot. It is empty for initial snapshots.
// Callers must treat both slices as read-only.
type Snapshot[T Number] struct {
	Values []T   `json:"values" yaml:"values"`
	Active []int `json:"active" yaml:"active"`
}

// newSnapshot copies values so later writes to the working sequence never
// reach a recorded snapshot.
func newSnapshot[T Number](values []T, active ...int) Snapshot[T] {
	snap := Snapshot[T]{
		Values: make([]T, len(values)),
		Active: make([]int, len(active)),
	}

	copy(snap.Values, values)
	copy(snap.Active, active)

	return snap
}

// Len returns the number of values in the snapshot.
func (s Snapshot[T]) Len() int {
	return len(s.Values)
}

// IsInitial reports whether the snapshot was taken before any write.
func (s Snapshot[T]) IsInitial() bool {
	return len(s.Active) == 0
}

// IsActive reports whether position i was written by the producing mutation.
func (s Snapshot[T]) IsActive(i int) bool {
	_, found := slices.BinarySearch(s.Active, i)

	return found
}

// Equal reports whether two snapshots hold the same values and active set.
func (s Snapshot[T]) Equal(other Snapshot[T]) bool {
	return slices.Equal(s.Values, other.Values) && slices.Equal(s.Active, other.Active)
}

// History is the ordered, append-only log of snapshots.
type History[T Number] []Snapshot[T]

// Last returns the most recent snapshot.
func (h History[T]) Last() (Snapshot[T], bool) {
	if len(h) == 0 {
		return Snapshot[T]{}, false
	}

	return h[len(h)-1], true
}

// Steps returns the number of snapshots recorded after the first one.
func (h History[T]) Steps() int {
	if len(h) == 0 {
		return 0
	}

	return len(h) - 1
}

// Clone returns a copy of the history slice. Snapshots are shared because
// they are never mutated.
func (h History[T]) Clone() History[T] {
	return slices.Clone(h)
}

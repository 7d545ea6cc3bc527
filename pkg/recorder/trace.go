package recorder

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"unsafe"
)

// Trace errors.
var (
	ErrEmptyHistory    = errors.New("history is empty")
	ErrNotCompactable  = errors.New("snapshot is not a single write")
	ErrWriteOutOfRange = errors.New("write index out of range")
)

// Write is one element placement: Value stored at Index.
type Write[T Number] struct {
	Index int `json:"i" yaml:"i"`
	Value T   `json:"v" yaml:"v"`
}

// Trace is the delta form of a History: the initial values and one Write per
// later snapshot. It stores O(n + steps) values instead of O(n * steps).
type Trace[T Number] struct {
	Initial []T        `json:"initial" yaml:"initial"`
	Writes  []Write[T] `json:"writes"  yaml:"writes"`
}

// Compact converts a history into a trace. Every snapshot after the first
// must have exactly one active index and differ from its predecessor at most
// at that index.
func Compact[T Number](h History[T]) (Trace[T], error) {
	return CompactStream(slices.All(h))
}

// CompactStream builds a trace straight from a snapshot stream such as
// Recorder.Stream, holding one working copy instead of the full history.
// It consumes the whole stream unless a snapshot is rejected.
func CompactStream[T Number](seq iter.Seq2[int, Snapshot[T]]) (Trace[T], error) {
	var (
		tr      Trace[T]
		current []T
		started bool
		err     error
	)

	for step, snap := range seq {
		if !started {
			tr.Initial = append([]T{}, snap.Values...)
			current = append([]T{}, snap.Values...)
			started = true

			continue
		}

		var w Write[T]

		w, err = nextWrite(current, snap, step)
		if err != nil {
			break
		}

		current[w.Index] = w.Value
		tr.Writes = append(tr.Writes, w)
	}

	if err != nil {
		return Trace[T]{}, err
	}

	if !started {
		return Trace[T]{}, ErrEmptyHistory
	}

	if tr.Writes == nil {
		tr.Writes = []Write[T]{}
	}

	return tr, nil
}

// nextWrite extracts the single write that turns prev into cur.
func nextWrite[T Number](prev []T, cur Snapshot[T], step int) (Write[T], error) {
	if len(cur.Active) != 1 || cur.Len() != len(prev) {
		return Write[T]{}, fmt.Errorf("%w: step %d", ErrNotCompactable, step)
	}

	idx := cur.Active[0]
	if idx < 0 || idx >= cur.Len() {
		return Write[T]{}, fmt.Errorf("%w: step %d index %d", ErrWriteOutOfRange, step, idx)
	}

	for i := range cur.Values {
		if i != idx && cur.Values[i] != prev[i] {
			return Write[T]{}, fmt.Errorf("%w: step %d changes index %d", ErrNotCompactable, step, i)
		}
	}

	return Write[T]{Index: idx, Value: cur.Values[idx]}, nil
}

// Expand rebuilds the full history described by the trace.
func (tr Trace[T]) Expand() (History[T], error) {
	h := make(History[T], 0, len(tr.Writes)+1)
	h = append(h, newSnapshot(tr.Initial))

	current := append([]T{}, tr.Initial...)

	for step, w := range tr.Writes {
		if w.Index < 0 || w.Index >= len(current) {
			return nil, fmt.Errorf("%w: step %d index %d", ErrWriteOutOfRange, step+1, w.Index)
		}

		current[w.Index] = w.Value
		h = append(h, newSnapshot(current, w.Index))
	}

	return h, nil
}

// Final returns the values after the last write.
func (tr Trace[T]) Final() []T {
	current := append([]T{}, tr.Initial...)

	for _, w := range tr.Writes {
		if w.Index >= 0 && w.Index < len(current) {
			current[w.Index] = w.Value
		}
	}

	return current
}

// sliceHeaderBytes is the size of a slice header on 64-bit platforms.
const sliceHeaderBytes = 24

// HistoryBytes estimates the memory a reset sort of n elements retains as a
// full history. It grows as O(n^2 log n).
func HistoryBytes[T Number](n int) uint64 {
	var zero T

	elem := uint64(unsafe.Sizeof(zero))
	snapshots := uint64(Placements(n) + 1)
	perSnapshot := 2*sliceHeaderBytes + uint64(n)*elem + uint64(unsafe.Sizeof(int(0)))

	return snapshots * perSnapshot
}

// TraceBytes estimates the memory of the same run stored as a Trace.
func TraceBytes[T Number](n int) uint64 {
	var zero Write[T]

	var elem T

	return 2*sliceHeaderBytes + uint64(n)*uint64(unsafe.Sizeof(elem)) +
		uint64(Placements(n))*uint64(unsafe.Sizeof(zero))
}

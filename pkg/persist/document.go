package persist

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/sortscope/pkg/recorder"
)

// Document kinds.
const (
	KindHistory = "history"
	KindTrace   = "trace"
)

// FormatVersion is the current history file version.
const FormatVersion = 1

// Sentinel errors for history files.
var (
	ErrUnknownFormat = errors.New("unknown history file format")
	ErrUnknownKind   = errors.New("unknown history document kind")
	ErrUnsupported   = errors.New("unsupported history file version")
)

// Document is the on-disk form of a recorded history. Exactly one of
// Snapshots and Trace is set, as selected by Kind.
type Document[T recorder.Number] struct {
	Version   int                 `json:"version"             yaml:"version"`
	Kind      string              `json:"kind"                yaml:"kind"`
	Snapshots recorder.History[T] `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
	Trace     *recorder.Trace[T]  `json:"trace,omitempty"     yaml:"trace,omitempty"`
}

// NewHistoryDocument wraps a full history.
func NewHistoryDocument[T recorder.Number](h recorder.History[T]) Document[T] {
	return Document[T]{Version: FormatVersion, Kind: KindHistory, Snapshots: h}
}

// NewTraceDocument compacts h and wraps the resulting trace.
func NewTraceDocument[T recorder.Number](h recorder.History[T]) (Document[T], error) {
	tr, err := recorder.Compact(h)
	if err != nil {
		return Document[T]{}, fmt.Errorf("compact history: %w", err)
	}

	return TraceDocument(tr), nil
}

// TraceDocument wraps an already compacted trace, such as one built with
// recorder.CompactStream.
func TraceDocument[T recorder.Number](tr recorder.Trace[T]) Document[T] {
	return Document[T]{Version: FormatVersion, Kind: KindTrace, Trace: &tr}
}

// History returns the full history held by the document, expanding a trace.
func (d Document[T]) History() (recorder.History[T], error) {
	if d.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, d.Version)
	}

	switch d.Kind {
	case KindHistory:
		return normalize(d.Snapshots), nil
	case KindTrace:
		if d.Trace == nil {
			return nil, fmt.Errorf("%w: trace document without trace", ErrUnknownKind)
		}

		tr := *d.Trace
		if tr.Initial == nil {
			tr.Initial = []T{}
		}

		h, err := tr.Expand()
		if err != nil {
			return nil, fmt.Errorf("expand trace: %w", err)
		}

		return h, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
	}
}

// normalize restores empty slices that gob and YAML decode as nil.
func normalize[T recorder.Number](h recorder.History[T]) recorder.History[T] {
	if h == nil {
		return recorder.History[T]{}
	}

	for i := range h {
		if h[i].Values == nil {
			h[i].Values = []T{}
		}

		if h[i].Active == nil {
			h[i].Active = []int{}
		}
	}

	return h
}

// CodecForPath picks a codec from the file extension.
func CodecForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case jsonExtension:
		return NewJSONCodec(), nil
	case gobExtension:
		return NewGobCodec(), nil
	case yamlExtension, ".yml":
		return NewYAMLCodec(), nil
	case lz4Extension:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// CodecForFormat picks a codec from a format name such as "json" or "lz4".
func CodecForFormat(format string) (Codec, error) {
	return CodecForPath("history." + format)
}

// SaveFile encodes state into the file at path, creating or truncating it.
func SaveFile(path string, codec Codec, state any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	defer file.Close()

	err = codec.Encode(file, state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	return nil
}

// LoadFile decodes the file at path into state, which must be a pointer.
func LoadFile(path string, codec Codec, state any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}

// SaveHistory writes h to path using the codec implied by the extension.
// With compact set the history is stored as a trace.
func SaveHistory[T recorder.Number](path string, h recorder.History[T], compact bool) error {
	codec, err := CodecForPath(path)
	if err != nil {
		return err
	}

	doc := NewHistoryDocument(h)

	if compact {
		doc, err = NewTraceDocument(h)
		if err != nil {
			return err
		}
	}

	return SaveFile(path, codec, doc)
}

// SaveTrace writes a compacted trace to path using the codec implied by the
// extension.
func SaveTrace[T recorder.Number](path string, tr recorder.Trace[T]) error {
	codec, err := CodecForPath(path)
	if err != nil {
		return err
	}

	return SaveFile(path, codec, TraceDocument(tr))
}

// LoadHistory reads a history written by SaveHistory. JSON files are
// validated against the history schema before decoding.
func LoadHistory[T recorder.Number](path string) (recorder.History[T], error) {
	codec, err := CodecForPath(path)
	if err != nil {
		return nil, err
	}

	var doc Document[T]

	if _, isJSON := codec.(*JSONCodec); isJSON {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read history file: %w", readErr)
		}

		validateErr := ValidateJSON(data)
		if validateErr != nil {
			return nil, validateErr
		}

		decodeErr := codec.Decode(bytes.NewReader(data), &doc)
		if decodeErr != nil {
			return nil, fmt.Errorf("decode state: %w", decodeErr)
		}
	} else {
		loadErr := LoadFile(path, codec, &doc)
		if loadErr != nil {
			return nil, loadErr
		}
	}

	return doc.History()
}

package factory

import (
	"errors"
	"fmt"
	"slices"

	"github.com/stacklok/solarmap/internal/maps"
)

var (
	// ErrEmptyInput is returned when nothing resolved and empty results were not allowed
	ErrEmptyInput = errors.New("no maps found in input")

	// ErrConflictingMode is returned when both sequence and composite output are requested
	ErrConflictingMode = errors.New("sequence and composite are mutually exclusive")
)

// Mode selects how constructed maps are aggregated
type Mode int

const (
	// ModeAuto returns a single map for one input and a date-sorted list otherwise
	ModeAuto Mode = iota
	// ModeSequence wraps date-sorted maps in a maps.Sequence
	ModeSequence
	// ModeComposite wraps maps in a maps.Composite in resolution order
	ModeComposite
)

// String implements fmt.Stringer
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeSequence:
		return "sequence"
	case ModeComposite:
		return "composite"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ResultKind identifies which variant a Result holds
type ResultKind int

const (
	// ResultSingle holds exactly one map
	ResultSingle ResultKind = iota
	// ResultList holds a date-sorted list of maps
	ResultList
	// ResultSequence holds a maps.Sequence
	ResultSequence
	// ResultComposite holds a maps.Composite
	ResultComposite
)

// String implements fmt.Stringer
func (k ResultKind) String() string {
	switch k {
	case ResultSingle:
		return "single"
	case ResultList:
		return "list"
	case ResultSequence:
		return "sequence"
	case ResultComposite:
		return "composite"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the outcome of a construct call. Exactly one variant is set, as given by Kind.
type Result struct {
	kind      ResultKind
	single    maps.Map
	list      []maps.Map
	sequence  *maps.Sequence
	composite *maps.Composite
}

// Kind returns the variant held
func (r *Result) Kind() ResultKind {
	return r.kind
}

// Single returns the map of a ResultSingle, or nil
func (r *Result) Single() maps.Map {
	return r.single
}

// List returns a copy of the maps of a ResultList, or nil
func (r *Result) List() []maps.Map {
	if r.kind != ResultList {
		return nil
	}
	return slices.Clone(r.list)
}

// Sequence returns the container of a ResultSequence, or nil
func (r *Result) Sequence() *maps.Sequence {
	return r.sequence
}

// Composite returns the container of a ResultComposite, or nil
func (r *Result) Composite() *maps.Composite {
	return r.composite
}

// Maps returns every map in the result, in result order
func (r *Result) Maps() []maps.Map {
	switch r.kind {
	case ResultSingle:
		return []maps.Map{r.single}
	case ResultList:
		return slices.Clone(r.list)
	case ResultSequence:
		return r.sequence.Maps()
	case ResultComposite:
		return r.composite.Maps()
	default:
		return nil
	}
}

// Len returns the number of maps in the result
func (r *Result) Len() int {
	switch r.kind {
	case ResultSingle:
		return 1
	case ResultList:
		return len(r.list)
	case ResultSequence:
		return r.sequence.Len()
	case ResultComposite:
		return r.composite.Len()
	default:
		return 0
	}
}

// Aggregate wraps constructed maps according to mode.
// Sequences and lists are stable-sorted by observation time with undated maps last;
// composites keep the given order. Containers may be empty, but ModeAuto with no
// items fails with ErrEmptyInput unless allowEmpty is set.
func Aggregate(items []maps.Map, mode Mode, allowEmpty bool) (*Result, error) {
	switch mode {
	case ModeSequence:
		sorted := slices.Clone(items)
		maps.SortByDate(sorted)
		return &Result{kind: ResultSequence, sequence: maps.NewSequence(sorted...)}, nil

	case ModeComposite:
		return &Result{kind: ResultComposite, composite: maps.NewComposite(items...)}, nil

	case ModeAuto:
		switch len(items) {
		case 0:
			if !allowEmpty {
				return nil, ErrEmptyInput
			}
			return &Result{kind: ResultList, list: []maps.Map{}}, nil
		case 1:
			return &Result{kind: ResultSingle, single: items[0]}, nil
		default:
			sorted := slices.Clone(items)
			maps.SortByDate(sorted)
			return &Result{kind: ResultList, list: sorted}, nil
		}

	default:
		return nil, fmt.Errorf("unknown aggregation mode %s", mode)
	}
}

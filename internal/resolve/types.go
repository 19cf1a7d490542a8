// Package resolve turns the heterogeneous arguments accepted by the map
// factory into an ordered list of sources: in-memory pairs, local files,
// or already-built maps.
//
// Each argument is checked against the rules below, in order:
//
//  1. An existing maps.Map passes through unchanged.
//  2. A value accepted by a registered RecordResolver becomes a pair.
//  3. A meta.Pair, *meta.Pair, or [2]any{array, metadata} becomes a pair.
//  4. An array followed by metadata in the next argument becomes a pair.
//  5. An existing directory expands to its sorted regular files, following symlinks.
//  6. A string containing wildcards is expanded by the pattern package.
//  7. An existing file becomes a file source.
//  8. An http, https or ftp URL is downloaded by the Fetcher, then treated as a file.
//  9. Any other slice or array has its elements resolved and flattened.
//  10. Everything else fails with an UnrecognizedInputError.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/meta"
)

//go:generate mockgen -destination=mocks/mock_resolve.go -package=mocks -source=types.go Fetcher,RecordResolver,DescriptorConverter

// Path marks a string argument as a filesystem path. Plain strings are accepted too.
type Path string

// SourceKind identifies the variant held by a Source, or the rule that produced it
type SourceKind int

const (
	// SourcePair is an in-memory (array, metadata) pair
	SourcePair SourceKind = iota
	// SourceFile is a local file still to be read
	SourceFile
	// SourcePattern is a wildcard expansion
	SourcePattern
	// SourceDirectory is a directory listing
	SourceDirectory
	// SourceURL is a remote file
	SourceURL
	// SourceMap is an already constructed map
	SourceMap
	// SourceRecord is a catalog record handle
	SourceRecord
)

// String implements fmt.Stringer
func (k SourceKind) String() string {
	switch k {
	case SourcePair:
		return "pair"
	case SourceFile:
		return "file"
	case SourcePattern:
		return "pattern"
	case SourceDirectory:
		return "directory"
	case SourceURL:
		return "url"
	case SourceMap:
		return "map"
	case SourceRecord:
		return "record"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// Source is one resolved input. Kind is always SourcePair, SourceFile or SourceMap;
// Origin records which rule produced it.
type Source struct {
	Kind   SourceKind
	Origin SourceKind

	// Pair is set for SourcePair
	Pair meta.Pair
	// Path is set for SourceFile
	Path string
	// Map is set for SourceMap
	Map maps.Map
}

// Fetcher downloads a remote file and returns its local path
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// RecordResolver turns an external record handle into a pair
type RecordResolver interface {
	// Accepts reports whether v is a record handle this resolver understands
	Accepts(v any) bool

	// Resolve loads the pair that v refers to
	Resolve(ctx context.Context, v any) (meta.Pair, error)
}

// DescriptorConverter turns a coordinate descriptor into metadata
type DescriptorConverter interface {
	// Accepts reports whether v is a descriptor this converter understands
	Accepts(v any) bool

	// ToMetadata converts a descriptor into header keys
	ToMetadata(v any) (meta.Metadata, error)
}

var (
	// ErrUnrecognizedInput matches every UnrecognizedInputError
	ErrUnrecognizedInput = errors.New("unrecognized input")

	// ErrNoFetcher is returned for URL inputs when no Fetcher is configured
	ErrNoFetcher = errors.New("no fetcher configured for remote input")
)

// UnrecognizedInputError reports an argument that matched no resolution rule
type UnrecognizedInputError struct {
	Value  any
	Reason string
}

// Error implements error
func (e *UnrecognizedInputError) Error() string {
	desc := fmt.Sprintf("%T (%v)", e.Value, truncate(fmt.Sprintf("%v", e.Value), 80))
	if e.Reason != "" {
		return fmt.Sprintf("unrecognized input %s: %s", desc, e.Reason)
	}
	return fmt.Sprintf("unrecognized input %s", desc)
}

// Is lets errors.Is match ErrUnrecognizedInput
func (*UnrecognizedInputError) Is(target error) bool {
	return target == ErrUnrecognizedInput
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

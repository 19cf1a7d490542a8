package resolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/stacklok/solarmap/internal/maps"
	"github.com/stacklok/solarmap/internal/meta"
	"github.com/stacklok/solarmap/internal/pattern"
)

// Resolver applies the resolution rules to factory arguments
type Resolver struct {
	fetcher   Fetcher
	records   []RecordResolver
	converter DescriptorConverter
	logger    *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithFetcher sets the collaborator used for URL inputs
func WithFetcher(f Fetcher) Option {
	return func(r *Resolver) {
		r.fetcher = f
	}
}

// WithRecordResolver adds a record collaborator. Resolvers are consulted in the order added.
func WithRecordResolver(rr RecordResolver) Option {
	return func(r *Resolver) {
		if rr != nil {
			r.records = append(r.records, rr)
		}
	}
}

// WithDescriptorConverter sets the collaborator used for coordinate descriptors
func WithDescriptorConverter(c DescriptorConverter) Option {
	return func(r *Resolver) {
		r.converter = c
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver. Without collaborators, URLs, records and descriptors are not resolvable.
func New(opts ...Option) *Resolver {
	r := &Resolver{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve converts args into sources, preserving argument order.
// The first failure aborts resolution; inputs are never modified.
func (r *Resolver) Resolve(ctx context.Context, args ...any) ([]Source, error) {
	sources, err := r.resolveArgs(ctx, args)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Resolved inputs", "arguments", len(args), "sources", len(sources))
	return sources, nil
}

func (r *Resolver) resolveArgs(ctx context.Context, args []any) ([]Source, error) {
	var out []Source
	for i := 0; i < len(args); i++ {
		var next any
		hasNext := i+1 < len(args)
		if hasNext {
			next = args[i+1]
		}

		srcs, consumed, err := r.resolveAt(ctx, args[i], next, hasNext)
		if err != nil {
			return nil, err
		}
		out = append(out, srcs...)
		i += consumed - 1
	}
	return out, nil
}

// resolveAt resolves arg, possibly pairing it with next, and reports how many arguments it used
func (r *Resolver) resolveAt(ctx context.Context, arg, next any, hasNext bool) ([]Source, int, error) {
	// 1: passthrough
	if m, ok := arg.(maps.Map); ok {
		return []Source{{Kind: SourceMap, Origin: SourceMap, Map: m}}, 1, nil
	}

	// 2: record handle
	for _, rr := range r.records {
		if !rr.Accepts(arg) {
			continue
		}
		pair, err := rr.Resolve(ctx, arg)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to resolve record %v: %w", arg, err)
		}
		return []Source{{Kind: SourcePair, Origin: SourceRecord, Pair: pair}}, 1, nil
	}

	// 3: tuple pair
	if pair, ok, err := r.tuplePair(arg); ok || err != nil {
		if err != nil {
			return nil, 0, err
		}
		return []Source{{Kind: SourcePair, Origin: SourcePair, Pair: pair}}, 1, nil
	}

	// 4: array followed by metadata
	if arr, ok := toArray(arg); ok {
		if hasNext {
			md, ok, err := r.toMetadata(next)
			if err != nil {
				return nil, 0, err
			}
			if ok {
				pair, err := meta.NewPair(arr, md)
				if err != nil {
					return nil, 0, err
				}
				return []Source{{Kind: SourcePair, Origin: SourcePair, Pair: pair}}, 2, nil
			}
		}
		return nil, 0, &UnrecognizedInputError{Value: arg, Reason: "array is not followed by metadata"}
	}

	// 5-8: paths and URLs
	if s, ok := pathLike(arg); ok {
		srcs, err := r.resolveString(ctx, s)
		return srcs, 1, err
	}

	// 9: collections
	if elems, ok := collection(arg); ok {
		srcs, err := r.resolveArgs(ctx, elems)
		if err != nil {
			return nil, 0, err
		}
		return srcs, 1, nil
	}

	// 10
	return nil, 0, &UnrecognizedInputError{Value: arg}
}

func (r *Resolver) resolveString(ctx context.Context, s string) ([]Source, error) {
	if s == "" {
		return nil, &UnrecognizedInputError{Value: s, Reason: "empty path"}
	}

	if info, err := os.Stat(s); err == nil && info.IsDir() {
		return r.expandDirectory(s)
	}

	remote := isURL(s)

	if !remote && pattern.HasMeta(s) {
		matches, err := pattern.Expand(s)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("Expanded pattern", "pattern", s, "matches", len(matches))

		var out []Source
		for _, match := range matches {
			srcs, err := r.resolveLiteralPath(match, SourcePattern)
			if err != nil {
				return nil, err
			}
			out = append(out, srcs...)
		}
		return out, nil
	}

	if !remote {
		return r.resolveLiteralPath(s, SourceFile)
	}

	if r.fetcher == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoFetcher, s)
	}
	local, err := r.fetcher.Fetch(ctx, s)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Fetched remote input", "url", s, "path", local)
	return []Source{{Kind: SourceFile, Origin: SourceURL, Path: local}}, nil
}

// resolveLiteralPath resolves an existing path without wildcard expansion
func (r *Resolver) resolveLiteralPath(p string, origin SourceKind) ([]Source, error) {
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &UnrecognizedInputError{Value: p, Reason: "no such file or directory"}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if info.IsDir() {
		return r.expandDirectory(p)
	}
	return []Source{{Kind: SourceFile, Origin: origin, Path: p}}, nil
}

func (r *Resolver) expandDirectory(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}

	out := make([]Source, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		if !isRegularFile(entry, p) {
			continue
		}
		out = append(out, Source{
			Kind:   SourceFile,
			Origin: SourceDirectory,
			Path:   p,
		})
	}
	r.logger.Debug("Expanded directory", "directory", dir, "files", len(out))
	return out, nil
}

// isRegularFile reports whether entry is a regular file, following symlinks
func isRegularFile(entry fs.DirEntry, p string) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func (r *Resolver) tuplePair(arg any) (meta.Pair, bool, error) {
	switch v := arg.(type) {
	case meta.Pair:
		if v.Data == nil {
			return meta.Pair{}, true, meta.ErrNilArray
		}
		return v.Clone(), true, nil
	case *meta.Pair:
		if v == nil || v.Data == nil {
			return meta.Pair{}, true, meta.ErrNilArray
		}
		return v.Clone(), true, nil
	case [2]any:
		arr, ok := toArray(v[0])
		if !ok {
			return meta.Pair{}, false, nil
		}
		md, ok, err := r.toMetadata(v[1])
		if err != nil {
			return meta.Pair{}, true, err
		}
		if !ok {
			return meta.Pair{}, false, nil
		}
		pair, err := meta.NewPair(arr, md)
		return pair, true, err
	default:
		return meta.Pair{}, false, nil
	}
}

// toMetadata rebuilds mapping-like values as fresh Metadata
func (r *Resolver) toMetadata(v any) (meta.Metadata, bool, error) {
	switch m := v.(type) {
	case meta.Metadata:
		return meta.NewMetadata(m), true, nil
	case map[string]any:
		return meta.NewMetadata(m), true, nil
	case map[string]string:
		return meta.FromStrings(m), true, nil
	}

	if r.converter != nil && r.converter.Accepts(v) {
		md, err := r.converter.ToMetadata(v)
		if err != nil {
			return nil, true, fmt.Errorf("failed to convert descriptor: %w", err)
		}
		return meta.NewMetadata(md), true, nil
	}
	return nil, false, nil
}

// toArray copies array-like values into a fresh Array
func toArray(v any) (*meta.Array, bool) {
	switch a := v.(type) {
	case *meta.Array:
		if a == nil {
			return nil, false
		}
		return a.Clone(), true
	case meta.Array:
		return a.Clone(), true
	case [][]float64:
		arr, err := meta.FromRows(a)
		if err != nil {
			return nil, false
		}
		return arr, true
	case []float64:
		return &meta.Array{Shape: []int{len(a)}, Data: append([]float64(nil), a...)}, true
	default:
		return nil, false
	}
}

func pathLike(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case Path:
		return string(s), true
	default:
		return "", false
	}
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
		return true
	default:
		return false
	}
}

// collection returns the elements of a non-string slice or array
func collection(v any) ([]any, bool) {
	if elems, ok := v.([]any); ok {
		return elems, true
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		// byte slices are raw content, not a list of inputs
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return elems, true
	default:
		return nil, false
	}
}

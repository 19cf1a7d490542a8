// Package maps holds the classified map types, the source registry used to
// classify metadata pairs, and the sequence and composite containers.
package maps

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stacklok/solarmap/internal/meta"
)

var (
	// ErrRegistrySealed is returned when registering after Seal
	ErrRegistrySealed = errors.New("source registry is sealed")

	// ErrDuplicateSource is returned when a source name is registered twice
	ErrDuplicateSource = errors.New("source already registered")

	// ErrInvalidEntry is returned when an entry is missing its name, predicate or constructor
	ErrInvalidEntry = errors.New("invalid registry entry")
)

// Predicate decides whether a header belongs to a source. It must only read the header.
type Predicate func(meta.Header) bool

// Constructor builds the concrete map for a pair accepted by its predicate
type Constructor func(meta.Pair) Map

// Entry binds a source name to its predicate and constructor
type Entry struct {
	Name      string
	Predicate Predicate
	Construct Constructor
}

// GenericEntry is the fallback returned by Classify when nothing matches
var GenericEntry = Entry{
	Name:      KindGeneric,
	Predicate: func(meta.Header) bool { return true },
	Construct: func(p meta.Pair) Map { return NewGenericMap(p) },
}

// Registry is an ordered list of source entries. Entries are appended during
// composition, then the registry is sealed and only read from.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	names   map[string]struct{}
	sealed  bool
	logger  *slog.Logger
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used to report misbehaving predicates
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty, unsealed registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		names:  make(map[string]struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a source. Earlier registrations take precedence over later ones.
func (r *Registry) Register(name string, predicate Predicate, construct Constructor) error {
	if name == "" || predicate == nil || construct == nil {
		return fmt.Errorf("%w: %q", ErrInvalidEntry, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %q", ErrRegistrySealed, name)
	}
	if _, exists := r.names[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSource, name)
	}

	r.names[name] = struct{}{}
	r.entries = append(r.entries, Entry{Name: name, Predicate: predicate, Construct: construct})
	return nil
}

// Seal ends the composition phase. Further Register calls fail.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal has been called
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Names returns the registered source names in precedence order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.Name)
	}
	return names
}

// Classify returns the first entry whose predicate accepts the pair's header,
// or GenericEntry when none does. A panicking predicate counts as no match.
func (r *Registry) Classify(pair meta.Pair) Entry {
	r.mu.RLock()
	entries := r.entries
	r.mu.RUnlock()

	header := meta.ReadOnly(pair.Meta)
	for _, e := range entries {
		if r.matches(e, header) {
			return e
		}
	}
	return GenericEntry
}

// Build classifies pair and constructs the resulting map
func (r *Registry) Build(pair meta.Pair) Map {
	return r.Classify(pair).Construct(pair)
}

func (r *Registry) matches(e Entry, header meta.Header) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Debug("Source predicate panicked, treating as no match",
				"source", e.Name,
				"panic", fmt.Sprint(rec))
			ok = false
		}
	}()
	return e.Predicate(header)
}

// Package transform converts raw upstream records into canonical records.
// Each source type has one transformer; unknown source types use Generic.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/act-placemat/normalizer/internal/schema"
)

const (
	SourceStories      = "db:stories"
	SourceStorytellers = "db:storytellers"
	SourceFileText     = "file:text"
	SourcePages        = "external:pages"
	SourceWeb          = "external:web"
	SourceGeneric      = "generic"
)

// DefaultMaxChunkSize caps the characters of one file:text chunk.
const DefaultMaxChunkSize = 1000

var ErrTransformation = errors.New("transformation failed")

// Error is returned when a transformer cannot coerce its raw input.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transform %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrTransformation }

// Func turns one raw record into one or more canonical records.
type Func func(raw any) ([]schema.Record, error)

type Option func(*Registry)

// WithMaxChunkSize sets the chunk cap used by the file:text transformer.
func WithMaxChunkSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxChunkSize = n
		}
	}
}

type Registry struct {
	mu           sync.RWMutex
	funcs        map[string]Func
	maxChunkSize int
}

// NewRegistry returns a registry holding every built-in transformer.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		funcs:        make(map[string]Func),
		maxChunkSize: DefaultMaxChunkSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.funcs[SourceStories] = Story
	r.funcs[SourceStorytellers] = Storyteller
	r.funcs[SourceFileText] = FileText(r.maxChunkSize)
	r.funcs[SourcePages] = Page
	r.funcs[SourceWeb] = Web
	r.funcs[SourceGeneric] = Generic
	return r
}

func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Resolve returns the transformer registered under name along with the name
// actually used. Unknown names resolve to the generic transformer.
func (r *Registry) Resolve(name string) (string, Func) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.funcs[name]; ok {
		return name, fn
	}
	return SourceGeneric, r.funcs[SourceGeneric]
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) MaxChunkSize() int {
	return r.maxChunkSize
}

func object(source string, raw any) (map[string]any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &Error{Source: source, Err: fmt.Errorf("expected an object, got %T", raw)}
	}
	return m, nil
}

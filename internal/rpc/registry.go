package rpc

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// HandlerFunc is the erased form of a procedure body. Input is the decoded,
// validated input struct pointer (nil for procedures without input).
type HandlerFunc func(ctx context.Context, rc *Context, input any) (any, error)

// Procedure is a named, schema-validated callable. Registered once at
// startup; the routing table is immutable afterwards.
type Procedure struct {
	// Path is the procedure's dotted name, e.g. "todo.create".
	Path string
	// Query marks a side-effect-free procedure callable via batched GET.
	Query bool
	// RequiresAuth rejects anonymous callers before the body runs.
	RequiresAuth bool

	newInput func() any
	handler  HandlerFunc
}

// Typed builds the input factory and erased handler for a procedure whose
// input decodes into I. Validation runs against I's struct tags before the
// handler is invoked, so the body may assume well-typed input.
func Typed[I any](fn func(ctx context.Context, rc *Context, input *I) (any, error)) (func() any, HandlerFunc) {
	factory := func() any { return new(I) }
	handler := func(ctx context.Context, rc *Context, input any) (any, error) {
		return fn(ctx, rc, input.(*I))
	}
	return factory, handler
}

// NoInput builds the handler for a procedure that takes no input.
func NoInput(fn func(ctx context.Context, rc *Context) (any, error)) (func() any, HandlerFunc) {
	handler := func(ctx context.Context, rc *Context, _ any) (any, error) {
		return fn(ctx, rc)
	}
	return nil, handler
}

// NewProcedure assembles a Procedure from a (factory, handler) pair as
// produced by Typed or NoInput.
func NewProcedure(path string, query, requiresAuth bool, newInput func() any, handler HandlerFunc) Procedure {
	return Procedure{
		Path:         path,
		Query:        query,
		RequiresAuth: requiresAuth,
		newInput:     newInput,
		handler:      handler,
	}
}

// Registry is the immutable routing table keyed by procedure path. All
// registration happens at startup; lookups afterwards are lock-free.
type Registry struct {
	procedures map[string]Procedure
	validate   *validator.Validate
}

func NewRegistry() *Registry {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report validation failures under JSON field names, matching the wire shape.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Registry{
		procedures: make(map[string]Procedure),
		validate:   v,
	}
}

// Register adds a procedure to the table. Duplicate paths are a programming
// error and panic at startup.
func (r *Registry) Register(p Procedure) {
	if _, exists := r.procedures[p.Path]; exists {
		panic(fmt.Sprintf("procedure %q registered twice", p.Path))
	}
	r.procedures[p.Path] = p
}

// Lookup resolves a procedure path.
func (r *Registry) Lookup(path string) (Procedure, bool) {
	p, ok := r.procedures[path]
	return p, ok
}

// Paths returns the registered procedure paths (for logging at startup).
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.procedures))
	for path := range r.procedures {
		paths = append(paths, path)
	}
	return paths
}

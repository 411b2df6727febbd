package runtime

import (
	"context"
	"fmt"
)

// RenderFunc is the executable form of a compiled template: one async-style
// function taking the per-call context and returning the rendered markup.
type RenderFunc func(ctx context.Context, rc *RenderContext) (string, error)

// Entry is a registered page or component value. The three shapes a
// discovery mechanism may hand over are modeled as an explicit tagged union
// rather than runtime shape-sniffing: an eager function, a lazy loader, or a
// module object.
type Entry interface{ renderEntry() }

// Func is an eagerly registered render function.
type Func RenderFunc

// Loader is a lazy entry: a zero-argument callable producing the module on
// first use.
type Loader func() (*Module, error)

// Module is a resolved page module: its default export plus the optional
// static-path enumeration consumed by an external pre-rendering pass (the
// dispatcher itself never calls StaticPaths).
type Module struct {
	Default     RenderFunc
	StaticPaths func(ctx context.Context) ([]PathEntry, error)
}

// PathEntry is one pre-render target produced by a page's static-path
// enumeration.
type PathEntry struct {
	Params map[string]string
	Props  map[string]any
}

func (Func) renderEntry()    {}
func (Loader) renderEntry()  {}
func (*Module) renderEntry() {}

// resolveEntry unwraps an entry to its render function with one explicit
// switch: loaders are invoked, modules yield their default export.
func resolveEntry(e Entry) (RenderFunc, error) {
	switch e := e.(type) {
	case Func:
		return RenderFunc(e), nil
	case Loader:
		m, err := e()
		if err != nil {
			return nil, fmt.Errorf("load module: %w", err)
		}
		if m == nil || m.Default == nil {
			return nil, fmt.Errorf("load module: no default render function")
		}
		return m.Default, nil
	case *Module:
		if e.Default == nil {
			return nil, fmt.Errorf("module has no default render function")
		}
		return e.Default, nil
	default:
		return nil, fmt.Errorf("unsupported registry entry type %T", e)
	}
}

// ResolveModule unwraps an entry to its module form, loading lazy entries.
// Pre-rendering uses it to reach StaticPaths; eager functions resolve to a
// module with only a default export.
func ResolveModule(e Entry) (*Module, error) {
	switch e := e.(type) {
	case Func:
		return &Module{Default: RenderFunc(e)}, nil
	case Loader:
		m, err := e()
		if err != nil {
			return nil, fmt.Errorf("load module: %w", err)
		}
		if m == nil {
			return nil, fmt.Errorf("load module: nil module")
		}
		return m, nil
	case *Module:
		return e, nil
	default:
		return nil, fmt.Errorf("unsupported registry entry type %T", e)
	}
}

// componentFunc coerces a loosely-typed component value (as produced by a
// module loader or bound by a build-script import) into a render function.
// A component is always a direct reference, never looked up by name.
func componentFunc(v any) (RenderFunc, error) {
	switch v := v.(type) {
	case Entry:
		return resolveEntry(v)
	case RenderFunc:
		return v, nil
	case func(context.Context, *RenderContext) (string, error):
		return v, nil
	case func() (*Module, error):
		return resolveEntry(Loader(v))
	default:
		return nil, fmt.Errorf("value of type %T is not a renderable component", v)
	}
}

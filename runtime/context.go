package runtime

import (
	"context"
	"net/http"
	"net/url"
)

// RenderContext is the per-call bundle passed into a render function. It is
// owned exclusively by one render invocation: nested component renders get
// their own freshly constructed context built from the values explicitly
// passed to them, never a shared mutable object.
type RenderContext struct {
	Props   map[string]any
	Slots   map[string]string
	Params  map[string]string
	URL     *url.URL
	Request *http.Request

	// vars is the evaluation scope: globals merged with the well-known
	// context fields and any build-script or loop bindings.
	vars map[string]any
	// exec owns the compiled-expression cache for the program being run.
	exec *executor
	// firstErr records the first expression failure; Err surfaces it.
	firstErr error

	renderComponent func(ctx context.Context, component any, props map[string]any, slots map[string]string) (string, error)
	load            func(ctx context.Context, path string) (any, error)
}

// newRenderContext builds the evaluation scope for one render call: globals
// first, then the well-known context fields on top.
func newRenderContext(globals, props map[string]any, slots map[string]string, params map[string]string, u *url.URL, req *http.Request) *RenderContext {
	if props == nil {
		props = map[string]any{}
	}
	if slots == nil {
		slots = map[string]string{}
	}
	if params == nil {
		params = map[string]string{}
	}
	vars := make(map[string]any, len(globals)+5)
	for k, v := range globals {
		vars[k] = v
	}
	vars["props"] = props
	vars["slots"] = slots
	vars["params"] = params
	vars["url"] = u
	vars["request"] = req

	return &RenderContext{
		Props:   props,
		Slots:   slots,
		Params:  params,
		URL:     u,
		Request: req,
		vars:    vars,
	}
}

// Set binds a name in the render scope. Generated code uses it for
// build-script assignments, deferred imports, and loop variables.
func (rc *RenderContext) Set(name string, v any) { rc.vars[name] = v }

// Get reads a name from the render scope.
func (rc *RenderContext) Get(name string) any { return rc.vars[name] }

// Err returns the first expression-evaluation failure of this call, if any.
func (rc *RenderContext) Err() error { return rc.firstErr }

func (rc *RenderContext) fail(err error) {
	if rc.firstErr == nil {
		rc.firstErr = err
	}
}

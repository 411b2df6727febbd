package runtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/alphadose/haxmap"
)

// NotFound is the body returned when no registered page matches a request
// path. Callers distinguish it from real output with IsNotFound; a missing
// page is not a render error.
const NotFound = "aero: page not found"

// IsNotFound reports whether a render result is the not-found sentinel.
func IsNotFound(body string) bool { return body == NotFound }

// Input carries the per-request inputs of a page render.
type Input struct {
	Props   map[string]any
	Request *http.Request
}

// pageSet is an immutable snapshot of the registered pages. Lookups read
// the current snapshot without locking; registration builds a new snapshot
// and swaps it in.
type pageSet struct {
	entries *haxmap.Map[string, Entry]
	keys    []string
}

// Dispatcher maps request paths to registered page entries and renders
// them. It is safe for concurrent use: renders proceed against an atomic
// snapshot while registration swaps in a replacement.
type Dispatcher struct {
	pages   atomic.Pointer[pageSet]
	globals *haxmap.Map[string, any]

	mu   sync.Mutex // serializes registration
	load func(ctx context.Context, path string) (any, error)
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{globals: haxmap.New[string, any]()}
	d.pages.Store(&pageSet{entries: haxmap.New[string, Entry]()})
	return d
}

// SetLoader installs the deferred-import resolver used by build-script
// import statements.
func (d *Dispatcher) SetLoader(load func(ctx context.Context, path string) (any, error)) {
	d.load = load
}

// SetGlobal binds a name into the base scope of every subsequent render.
func (d *Dispatcher) SetGlobal(name string, v any) {
	d.globals.Set(name, v)
}

// Register binds a route to a page entry, replacing any previous binding.
// Routes are normalized so "about", "/about" and "about/" all address the
// same page.
func (d *Dispatcher) Register(route string, e Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	route = normalizeRoute(route)
	cur := d.pages.Load()
	next := &pageSet{entries: haxmap.New[string, Entry]()}
	cur.entries.ForEach(func(k string, v Entry) bool {
		next.entries.Set(k, v)
		return true
	})
	next.entries.Set(route, e)
	next.entries.ForEach(func(k string, _ Entry) bool {
		next.keys = append(next.keys, k)
		return true
	})
	sort.Strings(next.keys)
	d.pages.Store(next)
}

// RegisterAll replaces the whole registry with one snapshot swap, the bulk
// form used by discovery and watch-driven re-registration.
func (d *Dispatcher) RegisterAll(entries map[string]Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := &pageSet{entries: haxmap.New[string, Entry]()}
	for route, e := range entries {
		route = normalizeRoute(route)
		next.entries.Set(route, e)
		next.keys = append(next.keys, route)
	}
	sort.Strings(next.keys)
	d.pages.Store(next)
}

// Unregister removes a route binding, if present.
func (d *Dispatcher) Unregister(route string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	route = normalizeRoute(route)
	cur := d.pages.Load()
	next := &pageSet{entries: haxmap.New[string, Entry]()}
	cur.entries.ForEach(func(k string, v Entry) bool {
		if k != route {
			next.entries.Set(k, v)
			next.keys = append(next.keys, k)
		}
		return true
	})
	sort.Strings(next.keys)
	d.pages.Store(next)
}

// Routes returns the registered routes in sorted order.
func (d *Dispatcher) Routes() []string {
	keys := d.pages.Load().keys
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

func normalizeRoute(route string) string {
	route = strings.Trim(route, "/")
	if route == "" {
		return "index"
	}
	return route
}

// Lookup resolves a request path to a registered entry plus any route
// parameters captured from bracket segments. Resolution tries the exact
// route, then the index forms, then dynamic matching against routes with
// [param] segments in sorted route order.
func (d *Dispatcher) Lookup(path string) (Entry, map[string]string, bool) {
	set := d.pages.Load()
	route := normalizeRoute(path)

	if e, ok := set.entries.Get(route); ok {
		return e, nil, true
	}
	if e, ok := set.entries.Get(route + "/index"); ok {
		return e, nil, true
	}
	if route == "index" {
		if e, ok := set.entries.Get("home"); ok {
			return e, nil, true
		}
	}

	want := strings.Split(route, "/")
	for _, key := range set.keys {
		if !strings.Contains(key, "[") {
			continue
		}
		params, ok := matchDynamic(strings.Split(key, "/"), want)
		if !ok {
			continue
		}
		e, _ := set.entries.Get(key)
		return e, params, true
	}
	return nil, nil, false
}

// matchDynamic matches request segments against a route pattern where a
// segment of the form [name] captures the corresponding request segment.
func matchDynamic(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if strings.HasPrefix(p, "[") && strings.HasSuffix(p, "]") {
			name := p[1 : len(p)-1]
			val := segs[i]
			if unescaped, err := url.PathUnescape(val); err == nil {
				val = unescaped
			}
			if params == nil {
				params = map[string]string{}
			}
			params[name] = val
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// Render resolves and renders the page for a request path. A path with no
// matching page yields the NotFound sentinel and a nil error.
func (d *Dispatcher) Render(ctx context.Context, path string, in Input) (string, error) {
	e, params, ok := d.Lookup(path)
	if !ok {
		return NotFound, nil
	}
	fn, err := resolveEntry(e)
	if err != nil {
		return "", fmt.Errorf("page %q: %w", normalizeRoute(path), err)
	}

	var u *url.URL
	if in.Request != nil {
		u = in.Request.URL
	} else {
		u = &url.URL{Path: "/" + normalizeRoute(path)}
	}
	rc := d.newContext(in.Props, nil, params, u, in.Request)
	return fn(ctx, rc)
}

func (d *Dispatcher) newContext(props map[string]any, slots map[string]string, params map[string]string, u *url.URL, req *http.Request) *RenderContext {
	globals := map[string]any{}
	d.globals.ForEach(func(k string, v any) bool {
		globals[k] = v
		return true
	})
	rc := newRenderContext(globals, props, slots, params, u, req)
	rc.load = d.load
	rc.renderComponent = func(ctx context.Context, component any, props map[string]any, slots map[string]string) (string, error) {
		fn, err := componentFunc(component)
		if err != nil {
			return "", err
		}
		child := d.newContext(props, slots, params, u, req)
		return fn(ctx, child)
	}
	return rc
}

// RenderComponent renders a component entry outside of a page, for direct
// embedding.
func (d *Dispatcher) RenderComponent(ctx context.Context, component any, props map[string]any, slots map[string]string) (string, error) {
	rc := d.newContext(nil, nil, nil, &url.URL{Path: "/"}, nil)
	return rc.RenderComponent(ctx, component, props, slots)
}

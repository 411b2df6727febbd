// Package runtime executes compiled templates and dispatches request paths
// to registered pages.
//
// A compiled program becomes a RenderFunc through FuncOf. Pages register
// with a Dispatcher under their route; a render resolves the route (exact,
// index form, or dynamic [param] segments), builds a RenderContext scoping
// globals, props, slots, route params and the request, and runs the
// program. Components referenced from templates render through the same
// context machinery with their own props and slot content.
//
// Entries are lazy by construction: a page may register a plain render
// function, a loader invoked on first use, or a module exposing a default
// render function plus static-path enumeration for prerendering.
package runtime

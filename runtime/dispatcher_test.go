package runtime

import (
	"context"
	"testing"
)

// TestDispatcher_IndexForms_Resolve verifies the index-resolution ladder:
// directory index files answer for their directory path.
func TestDispatcher_IndexForms_Resolve(t *testing.T) {
	d := NewDispatcher()
	d.Register("index", Func(mustCompile(t, `root`)))
	d.Register("docs/index", Func(mustCompile(t, `docs`)))

	if got := renderPage(t, d, "/"); got != "root" {
		t.Errorf("root index: %q", got)
	}
	if got := renderPage(t, d, "/docs"); got != "docs" {
		t.Errorf("directory index: %q", got)
	}
	if got := renderPage(t, d, "/docs/"); got != "docs" {
		t.Errorf("trailing slash: %q", got)
	}
}

// TestDispatcher_HomeFallback_AnswersRoot verifies a page named home serves
// the root path when no index page exists.
func TestDispatcher_HomeFallback_AnswersRoot(t *testing.T) {
	d := NewDispatcher()
	d.Register("home", Func(mustCompile(t, `home`)))

	if got := renderPage(t, d, "/"); got != "home" {
		t.Errorf("home fallback: %q", got)
	}
}

// TestDispatcher_DynamicRoute_CapturesParams verifies bracket segments
// capture and percent-decode their path segment.
func TestDispatcher_DynamicRoute_CapturesParams(t *testing.T) {
	d := NewDispatcher()
	d.Register("blog/[slug]", Func(mustCompile(t, `<h1>{params.slug}</h1>`)))

	if got := renderPage(t, d, "/blog/first-post"); got != "<h1>first-post</h1>" {
		t.Errorf("param capture: %q", got)
	}
	if got := renderPage(t, d, "/blog/hello%20world"); got != "<h1>hello world</h1>" {
		t.Errorf("percent decoding: %q", got)
	}
}

// TestDispatcher_StaticBeatsDynamic verifies an exact route wins over a
// bracket route for the same path.
func TestDispatcher_StaticBeatsDynamic(t *testing.T) {
	d := NewDispatcher()
	d.Register("blog/[slug]", Func(mustCompile(t, `dynamic`)))
	d.Register("blog/about", Func(mustCompile(t, `static`)))

	if got := renderPage(t, d, "/blog/about"); got != "static" {
		t.Errorf("exact route lost to dynamic: %q", got)
	}
	if got := renderPage(t, d, "/blog/other"); got != "dynamic" {
		t.Errorf("dynamic route not used: %q", got)
	}
}

// TestDispatcher_NotFound_SentinelNotError verifies a miss returns the
// sentinel body with a nil error.
func TestDispatcher_NotFound_SentinelNotError(t *testing.T) {
	d := NewDispatcher()
	body, err := d.Render(context.Background(), "/missing", Input{})
	if err != nil {
		t.Fatalf("miss returned an error: %v", err)
	}
	if !IsNotFound(body) {
		t.Errorf("expected not-found sentinel, got %q", body)
	}
}

// TestDispatcher_RegisterSwap_ReplacesPage verifies re-registration and
// unregistration take effect for subsequent renders.
func TestDispatcher_RegisterSwap_ReplacesPage(t *testing.T) {
	d := NewDispatcher()
	d.Register("about", Func(mustCompile(t, `v1`)))
	if got := renderPage(t, d, "/about"); got != "v1" {
		t.Fatalf("initial registration: %q", got)
	}

	d.Register("about", Func(mustCompile(t, `v2`)))
	if got := renderPage(t, d, "/about"); got != "v2" {
		t.Errorf("re-registration not visible: %q", got)
	}

	d.Unregister("about")
	body, err := d.Render(context.Background(), "/about", Input{})
	if err != nil || !IsNotFound(body) {
		t.Errorf("unregistered page still resolves: %q, %v", body, err)
	}
}

// TestDispatcher_LazyEntry_LoadedOnRender verifies a Loader entry resolves
// through its module on first render and reports load failures per render.
func TestDispatcher_LazyEntry_LoadedOnRender(t *testing.T) {
	calls := 0
	d := NewDispatcher()
	fn := mustCompile(t, `lazy`)
	d.Register("lazy", Loader(func() (*Module, error) {
		calls++
		return &Module{Default: fn}, nil
	}))

	if got := renderPage(t, d, "/lazy"); got != "lazy" {
		t.Errorf("lazy render: %q", got)
	}
	if calls == 0 {
		t.Error("loader never invoked")
	}
}

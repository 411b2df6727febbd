package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamiewilson/aero/config"
	"github.com/jamiewilson/aero/runtime"
)

// project builds a throwaway project directory from a path -> content map.
func project(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return config.Default(dir)
}

// attached builds a loader over the project and attaches it to a fresh
// dispatcher.
func attached(t *testing.T, cfg *config.Config) (*Loader, *runtime.Dispatcher) {
	t.Helper()
	l := New(cfg)
	d := runtime.NewDispatcher()
	if err := l.Attach(d); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	return l, d
}

// render renders a path through the dispatcher, failing on error.
func render(t *testing.T, d *runtime.Dispatcher, path string) string {
	t.Helper()
	body, err := d.Render(context.Background(), path, runtime.Input{})
	if err != nil {
		t.Fatalf("Render(%q) failed: %v", path, err)
	}
	return body
}

// TestAttach_RegistersPagesByLayout verifies routes mirror the pages
// directory, including nested and dynamic files.
func TestAttach_RegistersPagesByLayout(t *testing.T) {
	cfg := project(t, map[string]string{
		"pages/index.html":       `<h1>home</h1>`,
		"pages/about.html":       `<h1>about</h1>`,
		"pages/blog/[slug].html": `<h1>{params.slug}</h1>`,
	})
	_, d := attached(t, cfg)

	if got := render(t, d, "/"); got != "<h1>home</h1>" {
		t.Errorf("index page: %q", got)
	}
	if got := render(t, d, "/about"); got != "<h1>about</h1>" {
		t.Errorf("about page: %q", got)
	}
	if got := render(t, d, "/blog/first"); got != "<h1>first</h1>" {
		t.Errorf("dynamic page: %q", got)
	}
	// Full-path form addresses the same page.
	if got := render(t, d, "/pages/about"); got != "<h1>about</h1>" {
		t.Errorf("full-path key: %q", got)
	}
}

// TestLoad_ComponentImport_RendersThroughPage verifies a build-script
// import resolves to a component template on disk.
func TestLoad_ComponentImport_RendersThroughPage(t *testing.T) {
	cfg := project(t, map[string]string{
		"pages/index.html": `<script build>
import card from "~/components/card"
</script>
<card-component label="hi"></card-component>`,
		"components/card.html": `<div class="card">{props.label}</div>`,
	})
	_, d := attached(t, cfg)

	if got := render(t, d, "/"); got != `<div class="card">hi</div>` {
		t.Errorf("component render: %q", got)
	}
}

// TestInvalidate_RecompilesOnNextRender verifies cache invalidation picks
// up an edited template.
func TestInvalidate_RecompilesOnNextRender(t *testing.T) {
	cfg := project(t, map[string]string{
		"pages/index.html": `v1`,
	})
	l, d := attached(t, cfg)

	if got := render(t, d, "/"); got != "v1" {
		t.Fatalf("initial render: %q", got)
	}

	page := filepath.Join(cfg.PagesDir(), "index.html")
	if err := os.WriteFile(page, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Without invalidation the cached compile still answers.
	if got := render(t, d, "/"); got != "v1" {
		t.Errorf("cache bypassed: %q", got)
	}
	l.Invalidate(page)
	if got := render(t, d, "/"); got != "v2" {
		t.Errorf("invalidation not visible: %q", got)
	}
}

// TestAttach_Reattach_DropsRemovedPages verifies a second attach removes
// routes whose files are gone.
func TestAttach_Reattach_DropsRemovedPages(t *testing.T) {
	cfg := project(t, map[string]string{
		"pages/index.html": `home`,
		"pages/old.html":   `old`,
	})
	l, d := attached(t, cfg)
	if got := render(t, d, "/old"); got != "old" {
		t.Fatalf("initial render: %q", got)
	}

	if err := os.Remove(filepath.Join(cfg.PagesDir(), "old.html")); err != nil {
		t.Fatal(err)
	}
	l.Invalidate(filepath.Join(cfg.PagesDir(), "old.html"))
	if err := l.Attach(d); err != nil {
		t.Fatalf("re-attach failed: %v", err)
	}
	if got := render(t, d, "/old"); !runtime.IsNotFound(got) {
		t.Errorf("removed page still resolves: %q", got)
	}
}

// TestCompileError_SurfacesTemplatePath verifies a broken template names
// its file in the error.
func TestCompileError_SurfacesTemplatePath(t *testing.T) {
	cfg := project(t, map[string]string{
		"pages/index.html": `<p>{ a ++ }</p>`,
	})
	_, d := attached(t, cfg)

	_, err := d.Render(context.Background(), "/", runtime.Input{})
	if err == nil {
		t.Fatal("expected a render error")
	}
}

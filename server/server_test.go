package server

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamiewilson/aero/config"
	"github.com/jamiewilson/aero/loader"
	"github.com/jamiewilson/aero/runtime"
)

// testServer builds a server over a throwaway project directory.
func testServer(t *testing.T, files map[string]string) *Server {
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
	cfg := config.Default(dir)
	disp := runtime.NewDispatcher()
	l := loader.New(cfg)
	if err := l.Attach(disp); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, disp, l, log)
}

// get performs one request against the handler and returns the recorder.
func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

// TestServeHTTP_Page_RenderedWithReloadClient verifies a page answers 200
// with the live-reload client injected before the body close tag.
func TestServeHTTP_Page_RenderedWithReloadClient(t *testing.T) {
	s := testServer(t, map[string]string{
		"pages/index.html": `<html><body><h1>home</h1></body></html>`,
	})
	rec := get(t, s, "/")
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1>home</h1>") {
		t.Errorf("page content missing: %q", body)
	}
	snippetIdx := strings.Index(body, reloadPath)
	closeIdx := strings.Index(body, "</body>")
	if snippetIdx < 0 || closeIdx < 0 || snippetIdx > closeIdx {
		t.Errorf("reload client not injected before body close: %q", body)
	}
}

// TestServeHTTP_Miss_Uses404Page verifies an unmatched path serves the
// project's 404 page with a 404 status.
func TestServeHTTP_Miss_Uses404Page(t *testing.T) {
	s := testServer(t, map[string]string{
		"pages/index.html": `home`,
		"pages/404.html":   `<p>custom miss</p>`,
	})
	rec := get(t, s, "/nope")
	if rec.Code != 404 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "custom miss") {
		t.Errorf("404 page not served: %q", rec.Body.String())
	}
}

// TestServeHTTP_Miss_NoCustomPage_Plain404 verifies the fallback when the
// project has no 404 page.
func TestServeHTTP_Miss_NoCustomPage_Plain404(t *testing.T) {
	s := testServer(t, map[string]string{
		"pages/index.html": `home`,
	})
	rec := get(t, s, "/nope")
	if rec.Code != 404 {
		t.Errorf("status = %d", rec.Code)
	}
}

// TestInjectReloadSnippet_NoBodyTag_Appends covers documents without a
// body close tag.
func TestInjectReloadSnippet_NoBodyTag_Appends(t *testing.T) {
	out := injectReloadSnippet("<p>fragment</p>")
	if !strings.HasPrefix(out, "<p>fragment</p>") || !strings.Contains(out, reloadPath) {
		t.Errorf("snippet not appended: %q", out)
	}
}

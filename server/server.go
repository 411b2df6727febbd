// Package server serves rendered pages over HTTP during development.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jamiewilson/aero/config"
	"github.com/jamiewilson/aero/loader"
	"github.com/jamiewilson/aero/runtime"
)

// Server renders pages through a dispatcher and answers HTTP requests. In
// dev mode it also watches the project for template changes and pushes
// reload events to connected browsers.
type Server struct {
	cfg    *config.Config
	disp   *runtime.Dispatcher
	loader *loader.Loader
	log    *slog.Logger
	reload *reloadHub
}

func New(cfg *config.Config, disp *runtime.Dispatcher, l *loader.Loader, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{cfg: cfg, disp: disp, loader: l, log: log, reload: newReloadHub(log)}
}

// ListenAndServe starts the dev server, including the template watcher,
// and blocks until the context is canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	stopWatch, err := s.watch(ctx)
	if err != nil {
		s.log.Warn("template watcher unavailable", "error", err)
	} else {
		defer stopWatch()
	}

	srv := &http.Server{
		Addr:              s.cfg.Dev.Addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	s.log.Info("dev server listening", "addr", s.cfg.Dev.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == reloadPath {
		s.reload.serve(w, r)
		return
	}

	start := time.Now()
	body, err := s.disp.Render(r.Context(), r.URL.Path, runtime.Input{Request: r})
	if err != nil {
		s.log.Error("render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if runtime.IsNotFound(body) {
		status = http.StatusNotFound
		body, err = s.disp.Render(r.Context(), "404", runtime.Input{Request: r})
		if err != nil || runtime.IsNotFound(body) {
			http.NotFound(w, r)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(injectReloadSnippet(body)))
	s.log.Debug("rendered", "path", r.URL.Path, "status", status, "dur", time.Since(start))
}

// injectReloadSnippet appends the live-reload client before </body>, or at
// the end of the document when there is no body close tag.
func injectReloadSnippet(body string) string {
	if i := strings.LastIndex(body, "</body>"); i >= 0 {
		return body[:i] + reloadSnippet + body[i:]
	}
	return body + reloadSnippet
}

// Package loader turns template files on disk into registered pages and
// loadable components.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alphadose/haxmap"

	"github.com/jamiewilson/aero/compiler"
	"github.com/jamiewilson/aero/config"
	"github.com/jamiewilson/aero/runtime"
)

// Loader compiles templates lazily and caches the results by
// project-relative path. It backs both page registration and deferred
// imports from build scripts.
type Loader struct {
	cfg  *config.Config
	opts compiler.Options

	cache *haxmap.Map[string, *unit]
}

// unit is one template's compile slot. The once gate makes concurrent
// first loads of the same template compile it a single time.
type unit struct {
	once sync.Once
	prog *compiler.Program
	fn   runtime.RenderFunc
	err  error
}

func New(cfg *config.Config) *Loader {
	return &Loader{
		cfg: cfg,
		opts: compiler.Options{
			Resolver: &compiler.Resolver{
				Root:       cfg.Root,
				Alias:      cfg.AliasFunc(),
				DefaultExt: cfg.DefaultExt,
			},
			ClientEntryURL: cfg.Dev.ClientEntry,
		},
		cache: haxmap.New[string, *unit](),
	}
}

// rel canonicalizes a path to its project-relative slash form, the cache
// and registration key.
func (l *Loader) rel(path string) string {
	if filepath.IsAbs(path) {
		if r, err := filepath.Rel(l.cfg.Root, path); err == nil && !strings.HasPrefix(r, "..") {
			path = r
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// compile returns the cached compile of a project-relative template path,
// compiling on first use.
func (l *Loader) compile(relPath string) *unit {
	u, _ := l.cache.GetOrSet(relPath, &unit{})
	u.once.Do(func() {
		src, err := os.ReadFile(filepath.Join(l.cfg.Root, filepath.FromSlash(relPath)))
		if err != nil {
			u.err = fmt.Errorf("read template %s: %w", relPath, err)
			return
		}
		pt, err := compiler.Parse(string(src))
		if err != nil {
			u.err = fmt.Errorf("parse template %s: %w", relPath, err)
			return
		}
		prog, err := compiler.Compile(pt, l.opts)
		if err != nil {
			u.err = fmt.Errorf("compile template %s: %w", relPath, err)
			return
		}
		u.prog = prog
		u.fn = runtime.FuncOf(prog)
	})
	return u
}

// Program compiles a template and returns its program, for prerendering
// and source inspection.
func (l *Loader) Program(path string) (*compiler.Program, error) {
	u := l.compile(l.rel(path))
	return u.prog, u.err
}

// Load is the dispatcher's deferred-import hook. An import of a template
// path yields its render function; the binding renders as a component.
func (l *Loader) Load(_ context.Context, path string) (any, error) {
	u := l.compile(l.rel(path))
	if u.err != nil {
		return nil, u.err
	}
	return u.fn, nil
}

// Invalidate drops a template from the cache so the next use recompiles
// it. The watcher calls this on file change.
func (l *Loader) Invalidate(path string) {
	l.cache.Del(l.rel(path))
}

// InvalidateAll drops every cached compile.
func (l *Loader) InvalidateAll() {
	l.cache.ForEach(func(k string, _ *unit) bool {
		l.cache.Del(k)
		return true
	})
}

// Pages walks the pages directory and returns the route of every template
// found, mapped to a lazy entry. Routes mirror the file layout: pages/
// about.html serves /about, pages/blog/[slug].html serves /blog/<slug>.
func (l *Loader) Pages() (map[string]runtime.Entry, error) {
	dir := l.cfg.PagesDir()
	out := map[string]runtime.Entry{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, l.cfg.DefaultExt) {
			return nil
		}
		relToPages, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		route := strings.TrimSuffix(filepath.ToSlash(relToPages), l.cfg.DefaultExt)
		relPath := l.rel(path)
		out[route] = runtime.Loader(func() (*runtime.Module, error) {
			u := l.compile(relPath)
			if u.err != nil {
				return nil, u.err
			}
			return &runtime.Module{Default: u.fn}, nil
		})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("scan pages: %w", err)
	}
	return out, nil
}

// Attach wires the loader into a dispatcher: the deferred-import hook plus
// the full page registry. Each page registers under both its short route and
// its full path under the pages directory, so either form addresses it. It
// is called again after watch events to pick up added and removed pages.
func (l *Loader) Attach(d *runtime.Dispatcher) error {
	d.SetLoader(l.Load)
	pages, err := l.Pages()
	if err != nil {
		return err
	}
	entries := make(map[string]runtime.Entry, 2*len(pages))
	for route, e := range pages {
		entries[route] = e
		entries[path.Join(filepath.ToSlash(l.cfg.Pages), route)] = e
	}
	d.RegisterAll(entries)
	return nil
}

package server

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watch observes the pages and components directories and reacts to
// template changes: the changed file is dropped from the compile cache,
// pages are re-registered so additions and removals take effect, and
// connected browsers are told to reload. Events are debounced because
// editors commonly emit several writes per save.
func (s *Server) watch(ctx context.Context) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	addTree := func(root string) {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				w.Add(path)
			}
			return nil
		})
	}
	addTree(s.cfg.PagesDir())
	addTree(s.cfg.ComponentsDir())

	go func() {
		var pending []string
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						// New directories need their own watch.
						addTree(ev.Name)
					}
				}
				if !strings.HasSuffix(ev.Name, s.cfg.DefaultExt) {
					continue
				}
				pending = append(pending, ev.Name)
				if timer == nil {
					timer = time.NewTimer(100 * time.Millisecond)
				} else {
					timer.Reset(100 * time.Millisecond)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				for _, name := range pending {
					s.loader.Invalidate(name)
				}
				pending = pending[:0]
				if err := s.loader.Attach(s.disp); err != nil {
					s.log.Error("page re-registration failed", "error", err)
					continue
				}
				s.log.Info("templates reloaded")
				s.reload.broadcast()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("watch error", "error", err)
			}
		}
	}()

	return func() { w.Close() }, nil
}

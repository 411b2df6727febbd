package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamiewilson/aero/config"
	"github.com/jamiewilson/aero/loader"
	"github.com/jamiewilson/aero/runtime"
)

func buildCmd() *cobra.Command {
	var outDir string
	var emitSource bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Prerender every page to static HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagDir)
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Build.OutDir = outDir
			}
			return runBuild(cmd.Context(), cfg, emitSource, newLogger())
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (overrides aero.yml)")
	cmd.Flags().BoolVar(&emitSource, "emit-source", false, "also write the generated render source per page")
	return cmd
}

func runBuild(ctx context.Context, cfg *config.Config, emitSource bool, log *slog.Logger) error {
	disp := runtime.NewDispatcher()
	l := loader.New(cfg)
	if err := l.Attach(disp); err != nil {
		return err
	}

	out := cfg.Build.OutDir
	if !filepath.IsAbs(out) {
		out = filepath.Join(cfg.Root, out)
	}

	pages, err := l.Pages()
	if err != nil {
		return err
	}
	for route, entry := range pages {
		targets, err := buildTargets(ctx, route, entry)
		if err != nil {
			return fmt.Errorf("page %s: %w", route, err)
		}
		if targets == nil {
			log.Warn("skipping dynamic page without static paths", "route", route)
			continue
		}
		for _, t := range targets {
			body, err := disp.Render(ctx, t.path, runtime.Input{Props: t.props})
			if err != nil {
				return fmt.Errorf("render %s: %w", t.path, err)
			}
			if runtime.IsNotFound(body) {
				return fmt.Errorf("render %s: page did not resolve", t.path)
			}
			dest := outputFile(out, t.path)
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(dest, []byte(body), 0o644); err != nil {
				return err
			}
			log.Info("wrote", "file", dest)
		}
		if emitSource {
			prog, err := l.Program(filepath.Join(cfg.PagesDir(), filepath.FromSlash(route)+cfg.DefaultExt))
			if err != nil {
				return err
			}
			dest := filepath.Join(out, "_src", filepath.FromSlash(route)+".go.txt")
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(dest, []byte(prog.Source), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

type buildTarget struct {
	path  string
	props map[string]any
}

// buildTargets expands one route into its prerender targets. Static routes
// render once; dynamic routes enumerate through the module's StaticPaths
// and return nil when the module declares none.
func buildTargets(ctx context.Context, route string, entry runtime.Entry) ([]buildTarget, error) {
	if !strings.Contains(route, "[") {
		return []buildTarget{{path: route}}, nil
	}
	mod, err := runtime.ResolveModule(entry)
	if err != nil {
		return nil, err
	}
	if mod.StaticPaths == nil {
		return nil, nil
	}
	paths, err := mod.StaticPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("static paths: %w", err)
	}
	var out []buildTarget
	for _, pe := range paths {
		out = append(out, buildTarget{path: fillParams(route, pe.Params), props: pe.Props})
	}
	return out, nil
}

// fillParams substitutes captured parameter values into a route's bracket
// segments.
func fillParams(route string, params map[string]string) string {
	segs := strings.Split(route, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			segs[i] = params[s[1:len(s)-1]]
		}
	}
	return strings.Join(segs, "/")
}

// outputFile maps a rendered path to its file under the output directory:
// the index route becomes index.html, everything else route/index.html so
// static hosting serves clean URLs.
func outputFile(outDir, path string) string {
	if path == "index" {
		return filepath.Join(outDir, "index.html")
	}
	return filepath.Join(outDir, filepath.FromSlash(path), "index.html")
}

// Package config loads project settings from aero.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes an aero project. Zero values fall back to the
// conventional layout so a project without an aero.yml still works.
type Config struct {
	// Root is the project directory all other paths resolve under.
	Root string `yaml:"root"`
	// Pages and Components are the template directories, relative to Root.
	Pages      string `yaml:"pages"`
	Components string `yaml:"components"`
	// Aliases maps import prefixes to replacement paths. Longer prefixes
	// win over shorter ones when both match a specifier.
	Aliases map[string]string `yaml:"aliases"`
	// DefaultExt is appended to extensionless import specifiers.
	DefaultExt string `yaml:"defaultExt"`

	Dev struct {
		// Addr is the dev server listen address.
		Addr string `yaml:"addr"`
		// ClientEntry, when set, is the module script URL appended to
		// every rendered page.
		ClientEntry string `yaml:"clientEntry"`
	} `yaml:"dev"`

	Build struct {
		// OutDir receives prerendered pages and generated sources.
		OutDir string `yaml:"outDir"`
	} `yaml:"build"`
}

// Default returns the conventional configuration rooted at dir.
func Default(dir string) *Config {
	c := &Config{
		Root:       dir,
		Pages:      "pages",
		Components: "components",
		DefaultExt: ".html",
	}
	c.Dev.Addr = ":3000"
	c.Build.OutDir = "dist"
	return c
}

// Load reads aero.yml from dir, filling unset fields with defaults. A
// missing file yields the defaults without error.
func Load(dir string) (*Config, error) {
	c := Default(dir)
	data, err := os.ReadFile(filepath.Join(dir, "aero.yml"))
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read aero.yml: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse aero.yml: %w", err)
	}
	if c.Root == "" || c.Root == "." {
		c.Root = dir
	} else if !filepath.IsAbs(c.Root) {
		c.Root = filepath.Join(dir, c.Root)
	}
	if c.Pages == "" {
		c.Pages = "pages"
	}
	if c.Components == "" {
		c.Components = "components"
	}
	if c.DefaultExt == "" {
		c.DefaultExt = ".html"
	}
	if c.Dev.Addr == "" {
		c.Dev.Addr = ":3000"
	}
	if c.Build.OutDir == "" {
		c.Build.OutDir = "dist"
	}
	return c, nil
}

// PagesDir and ComponentsDir return the absolute template directories.
func (c *Config) PagesDir() string      { return filepath.Join(c.Root, c.Pages) }
func (c *Config) ComponentsDir() string { return filepath.Join(c.Root, c.Components) }

// AliasFunc adapts the alias table to the resolver's alias hook. It
// returns the empty string when no alias prefix matches. Prefixes are
// tried longest first so overlapping aliases resolve the same way on
// every call.
func (c *Config) AliasFunc() func(string) string {
	if len(c.Aliases) == 0 {
		return nil
	}
	prefixes := make([]string, 0, len(c.Aliases))
	for prefix := range c.Aliases {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})
	return func(spec string) string {
		for _, prefix := range prefixes {
			if spec == prefix {
				return c.Aliases[prefix]
			}
			if strings.HasPrefix(spec, prefix) && len(spec) > len(prefix) && spec[len(prefix)] == '/' {
				return c.Aliases[prefix] + spec[len(prefix):]
			}
		}
		return ""
	}
}

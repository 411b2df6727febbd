package compiler

import (
	"path"
	"path/filepath"
	"strings"
)

// Resolver maps user-written import and reference specifiers to canonical
// project-relative paths. Alias table construction is the caller's concern;
// the resolver only applies the supplied rewrite function, the project root,
// and the implicit-extension rule. Resolution never fails: an unresolvable
// specifier degrades to best-effort normalized output and the host module
// loader surfaces the miss at render time.
type Resolver struct {
	// Root is the absolute project root. Path-like absolute results under it
	// are rewritten relative to it.
	Root string
	// Alias rewrites alias-prefixed specifiers (e.g. "@/x" -> "<root>/x").
	// It returns the empty string when no alias applies. May be nil.
	Alias func(string) string
	// DefaultExt is appended to extensionless path-like import specifiers,
	// e.g. ".html".
	DefaultExt string
}

// pathLike reports whether a specifier refers to a project path rather than
// a bare package-style import.
func pathLike(s string) bool {
	return strings.HasPrefix(s, "./") ||
		strings.HasPrefix(s, "../") ||
		strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "@") ||
		strings.HasPrefix(s, "~")
}

// ResolveImport resolves an import specifier, applying the implicit
// extension: a path-like specifier with no extension and no trailing slash
// receives the default template extension so component and layout references
// can omit it.
func (r *Resolver) ResolveImport(specifier string) string {
	out := r.resolve(specifier)
	if out == specifier && !pathLike(specifier) {
		return out
	}
	if r.DefaultExt != "" && path.Ext(out) == "" && !strings.HasSuffix(specifier, "/") {
		out += r.DefaultExt
	}
	return out
}

// ResolveAttributeReference resolves a path-like attribute value (src, href
// and the like) without extension inference. Non-path-like values pass
// through unchanged.
func (r *Resolver) ResolveAttributeReference(value string) string {
	return r.resolve(value)
}

func (r *Resolver) resolve(specifier string) string {
	s := specifier
	aliased := false
	if r.Alias != nil {
		if rewritten := r.Alias(s); rewritten != "" {
			s, aliased = rewritten, true
		}
	}
	if !aliased && !pathLike(s) {
		// Bare package-style import: leave it alone.
		return specifier
	}
	if strings.HasPrefix(s, "~/") {
		// Project-root anchored: already relative to the root.
		return path.Clean(strings.TrimPrefix(s, "~/"))
	}
	if filepath.IsAbs(s) || strings.HasPrefix(s, "/") {
		norm := path.Clean(filepath.ToSlash(s))
		if r.Root != "" {
			root := path.Clean(filepath.ToSlash(r.Root))
			if rel, ok := strings.CutPrefix(norm, root+"/"); ok {
				return rel
			}
			if norm == root {
				return "."
			}
		}
		// Absolute but outside the root: an intentionally absolute server
		// route, kept as a normalized absolute path.
		return norm
	}
	return path.Clean(s)
}

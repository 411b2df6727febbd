package compiler

import (
	"regexp"
	"strings"
)

// Options configures a single compilation.
type Options struct {
	// Resolver rewrites import specifiers and path-like attribute
	// references. A zero resolver (no root, no aliases) is used when nil.
	Resolver *Resolver
	// ClientEntryURL, when set, appends one module-script tag referencing it
	// at the end of the generated body.
	ClientEntryURL string
}

// Compile turns a parsed template into a Program: the executable statement
// tree plus the source text of one render function. Compiling the same
// parsed template with the same resolver yields byte-identical source; slot
// and prop ordering follow first appearance in the template.
func Compile(pt *ParsedTemplate, opts Options) (*Program, error) {
	res := opts.Resolver
	if res == nil {
		res = &Resolver{DefaultExt: ".html"}
	}
	g := &generator{res: res}
	for _, cs := range pt.ClientScripts {
		if cs.Kind == ScriptBlocking {
			g.blocking = append(g.blocking, cs)
		}
	}

	body := buildScriptStmts(pt.BuildScript, res)

	tree := parseTree(expandSelfClosing(pt.Template))
	tmpl := g.children(tree.children)
	if !g.headSeen && len(g.blocking) > 0 {
		// No head in the document: blocking scripts go before everything
		// else instead.
		tmpl = append(g.blockingStmts(), tmpl...)
	}
	body = append(body, tmpl...)

	for _, cs := range pt.ClientScripts {
		if cs.Kind == ScriptInline {
			body = appendLit(body, "<script>"+cs.Body+"</script>")
		}
	}
	if opts.ClientEntryURL != "" {
		body = appendLit(body, `<script type="module" src="`+opts.ClientEntryURL+`"></script>`)
	}

	body = mergeLiterals(body)
	return &Program{Body: body, Source: renderSource(body)}, nil
}

// generator carries per-compilation state for the tree walk.
type generator struct {
	res      *Resolver
	blocking []ClientScript
	headSeen bool
}

func (g *generator) blockingStmts() []Stmt {
	var out []Stmt
	for _, cs := range g.blocking {
		out = appendLit(out, "<script>"+cs.Body+"</script>")
	}
	return out
}

var (
	importRe = regexp.MustCompile(`^import\s+([A-Za-z_][A-Za-z0-9_]*)\s+from\s+(?:"([^"]+)"|'([^']+)')\s*;?\s*$`)
	assignRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*([^=].*)$`)
)

// buildScriptStmts compiles the build-time script block. Import statements
// are rewritten to deferred loads resolved through the resolver, so the
// reference is resolved when the render function executes rather than at
// parse time. Assignment statements keep their right-hand side as opaque
// expression text. Anything else is ignored; stricter validation belongs to
// a linting layer, not the compiler.
func buildScriptStmts(script string, res *Resolver) []Stmt {
	var out []Stmt
	for _, stmt := range splitStatements(script) {
		if m := importRe.FindStringSubmatch(stmt); m != nil {
			spec := m[2]
			if spec == "" {
				spec = m[3]
			}
			out = append(out, ImportStmt{Name: m[1], Path: res.ResolveImport(spec)})
			continue
		}
		if m := assignRe.FindStringSubmatch(stmt); m != nil {
			out = append(out, AssignStmt{Name: m[1], Expr: strings.TrimSuffix(strings.TrimSpace(m[2]), ";")})
			continue
		}
	}
	return out
}

// splitStatements splits a build script into one statement per line, joining
// continuation lines while brackets remain open so multi-line literals stay
// intact.
func splitStatements(script string) []string {
	var stmts []string
	var cur strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
		if bracketBalance(cur.String()) > 0 {
			continue
		}
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}

// bracketBalance counts open minus closed brackets of all three kinds,
// skipping strings and comments with the same rules as the interpolation
// scanner.
func bracketBalance(s string) int {
	depth := 0
	var quote byte
	inLine, inBlock := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inLine:
			if c == '\n' {
				inLine = false
			}
		case inBlock:
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				inBlock = false
				i++
			}
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		default:
			switch c {
			case '\'', '"', '`':
				quote = c
			case '/':
				if i+1 < len(s) {
					switch s[i+1] {
					case '/':
						inLine = true
						i++
					case '*':
						inBlock = true
						i++
					}
				}
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
			}
		}
	}
	return depth
}

// appendLit appends literal text, merging with a trailing literal statement.
func appendLit(out []Stmt, text string) []Stmt {
	if text == "" {
		return out
	}
	if n := len(out); n > 0 {
		if lit, ok := out[n-1].(LiteralStmt); ok {
			out[n-1] = LiteralStmt{Text: lit.Text + text}
			return out
		}
	}
	return append(out, LiteralStmt{Text: text})
}

// mergeLiterals collapses adjacent literal statements throughout the tree so
// the emitted source has one append per literal run.
func mergeLiterals(body []Stmt) []Stmt {
	var out []Stmt
	for _, s := range body {
		switch s := s.(type) {
		case LiteralStmt:
			out = appendLit(out, s.Text)
		case CondStmt:
			for i := range s.Branches {
				s.Branches[i].Body = mergeLiterals(s.Branches[i].Body)
			}
			out = append(out, s)
		case EachStmt:
			s.Body = mergeLiterals(s.Body)
			out = append(out, s)
		case SlotStmt:
			s.Fallback = mergeLiterals(s.Fallback)
			out = append(out, s)
		case ComponentStmt:
			for i := range s.Slots {
				s.Slots[i].Body = mergeLiterals(s.Slots[i].Body)
			}
			out = append(out, s)
		default:
			out = append(out, s)
		}
	}
	return out
}

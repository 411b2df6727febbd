package compiler

import (
	"strings"

	"golang.org/x/net/html"
)

// directiveNames are the recognized element directives. Each also accepts a
// data- prefixed synonym; canonicalization happens once in directives(),
// before any directive logic runs.
var directiveNames = map[string]bool{
	"each":    true,
	"if":      true,
	"else-if": true,
	"else":    true,
	"props":   true,
	"slot":    true,
}

// directives splits an element's attributes into recognized directives
// (canonical names, consumed and excluded from serialization) and the
// remaining regular attributes.
func directives(n *node) (map[string]string, []html.Attribute) {
	var dirs map[string]string
	var rest []html.Attribute
	for _, a := range n.attrs {
		key := strings.TrimPrefix(a.Key, "data-")
		if a.Namespace == "" && directiveNames[key] {
			if dirs == nil {
				dirs = make(map[string]string)
			}
			if _, ok := dirs[key]; !ok {
				dirs[key] = a.Val
			}
			continue
		}
		rest = append(rest, a)
	}
	return dirs, rest
}

// children compiles a sibling run. Conditional chains are recognized here:
// an element carrying the primary-condition marker opens a chain that
// subsequent else-if / else siblings extend, with whitespace-only text nodes
// between members tolerated.
func (g *generator) children(nodes []*node) []Stmt {
	var out []Stmt
	i := 0
	for i < len(nodes) {
		n := nodes[i]
		if n.kind == nodeElement {
			dirs, rest := directives(n)
			if _, ok := dirs["if"]; ok {
				out = append(out, g.conditionalChain(nodes, &i, dirs, rest)...)
				continue
			}
		}
		out = append(out, g.nodeStmts(n)...)
		i++
	}
	return out
}

// nodeStmts compiles a single node outside of chain handling.
func (g *generator) nodeStmts(n *node) []Stmt {
	switch n.kind {
	case nodeText:
		return textStmts(n.data)
	case nodeComment, nodeDoctype:
		return []Stmt{LiteralStmt{Text: n.data}}
	case nodeElement:
		dirs, rest := directives(n)
		return g.elementStmts(n, dirs, rest)
	}
	return nil
}

// textStmts tokenizes a text run in text mode and emits one statement per
// segment.
func textStmts(text string) []Stmt {
	var out []Stmt
	for _, seg := range Tokenize(text, false) {
		if seg.Expr {
			out = append(out, InterpStmt{Expr: seg.Value})
		} else {
			out = appendLit(out, seg.Value)
		}
	}
	return out
}

// elementStmts applies the element's own directives (the loop; conditionals
// are a sibling-level concern) and emits it. A malformed each expression
// leaves the directive unapplied rather than failing the compile.
func (g *generator) elementStmts(n *node, dirs map[string]string, rest []html.Attribute) []Stmt {
	if v, ok := dirs["each"]; ok {
		if name, expr, ok := parseEach(v); ok {
			return []Stmt{EachStmt{Var: name, Expr: expr, Body: g.elementCore(n, dirs, rest)}}
		}
	}
	return g.elementCore(n, dirs, rest)
}

// elementCore emits the element itself: a slot read, a component invocation,
// or a literal element with its children.
func (g *generator) elementCore(n *node, dirs map[string]string, rest []html.Attribute) []Stmt {
	if n.data == "slot" {
		name := "default"
		for _, a := range rest {
			if a.Key == "name" {
				name = a.Val
			}
		}
		return []Stmt{SlotStmt{Name: name, Fallback: g.children(n.children)}}
	}
	if binding, ok := componentBinding(n.data); ok {
		return []Stmt{g.componentStmt(binding, n, dirs, rest)}
	}

	out := g.openTag(n, rest)
	if n.data == "head" && !g.headSeen {
		g.headSeen = true
		out = append(out, g.blockingStmts()...)
	}
	if voidElements[n.data] {
		return out
	}
	out = append(out, g.children(n.children)...)
	return appendLit(out, "</"+n.data+">")
}

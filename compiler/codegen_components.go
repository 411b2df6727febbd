package compiler

import (
	"strings"

	"golang.org/x/net/html"
)

// componentSuffixes are the recognized component and layout tag suffixes.
var componentSuffixes = []string{"-component", "-layout"}

// componentBinding maps a component-reference tag name to the local binding
// it resolves to: the suffix is stripped and the remaining hyphenated text
// collapses to a single-word identifier (site-header-component -> siteheader).
func componentBinding(tag string) (string, bool) {
	for _, suffix := range componentSuffixes {
		if name, ok := strings.CutSuffix(tag, suffix); ok && name != "" {
			return strings.ReplaceAll(name, "-", ""), true
		}
	}
	return "", false
}

// componentStmt compiles a component invocation: the prop spread (evaluated
// first so individual attributes win on key collision), the individual prop
// entries, and the children partitioned into per-slot compiled content.
func (g *generator) componentStmt(binding string, n *node, dirs map[string]string, rest []html.Attribute) Stmt {
	stmt := ComponentStmt{Binding: binding}

	if spread, ok := dirs["props"]; ok {
		stmt.HasSpread = true
		stmt.Spread = spreadExpression(spread)
	}

	for _, a := range rest {
		stmt.Props = append(stmt.Props, propEntry(a))
	}
	stmt.Slots = g.partitionSlots(n.children)
	return stmt
}

// spreadExpression interprets the prop-spread attribute value: a bare token
// spreads that local variable, brace-delimited content starting with the
// spread marker spreads the inner expression, any other brace-delimited
// content is an inline object expression, and no value at all spreads the
// conventionally-named `props` local.
func spreadExpression(value string) string {
	if strings.TrimSpace(value) == "" {
		return "props"
	}
	segs := Tokenize(value, true)
	if len(segs) == 1 && segs[0].Expr {
		inner := strings.TrimSpace(segs[0].Value)
		if after, ok := strings.CutPrefix(inner, "..."); ok {
			return strings.TrimSpace(after)
		}
		return inner
	}
	return strings.TrimSpace(value)
}

// propEntry builds one prop from an attribute. A value that is exactly one
// interpolation passes the evaluated value through untouched; anything else
// reconstructs a string from its segments.
func propEntry(a html.Attribute) Prop {
	segs := Tokenize(a.Val, true)
	if len(segs) == 1 && segs[0].Expr {
		return Prop{Name: a.Key, Expr: segs[0].Value}
	}
	return Prop{Name: a.Key, Segments: segs}
}

// partitionSlots groups component children by their slot-target attribute in
// first-appearance order, then compiles each group as a sibling run so slot
// content can itself contain loops, conditional chains, and nested
// components. Unmarked children fill the default slot; whitespace-only text
// between children is formatting, not slot content, and is dropped. The
// target attribute itself is a directive, so the regular directive
// canonicalization excludes it from the compiled output.
func (g *generator) partitionSlots(children []*node) []SlotContent {
	var order []string
	groups := make(map[string][]*node)

	for _, c := range children {
		if isWhitespaceText(c) {
			continue
		}
		target := "default"
		if c.kind == nodeElement {
			dirs, _ := directives(c)
			if t := dirs["slot"]; t != "" {
				target = t
			}
		}
		if _, ok := groups[target]; !ok {
			order = append(order, target)
		}
		groups[target] = append(groups[target], c)
	}

	out := make([]SlotContent, 0, len(order))
	for _, name := range order {
		out = append(out, SlotContent{Name: name, Body: g.children(groups[name])})
	}
	return out
}

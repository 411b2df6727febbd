package compiler

import (
	"strings"

	"golang.org/x/net/html"
)

// clientAttrPrefixes mark attribute names whose values belong to a
// client-side expression language (Alpine/HTMX style). Their values are
// serialized verbatim, with no interpolation substitution.
var clientAttrPrefixes = []string{"@", ":", "x-", "hx-"}

func isClientAttr(key string) bool {
	for _, p := range clientAttrPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// referenceAttrs are attributes whose values are path references rewritten
// through the resolver when they are static.
var referenceAttrs = map[string]bool{"src": true, "href": true}

// openTag serializes an element's open tag. Directive attributes have
// already been consumed; the remaining attributes are re-serialized with
// resolved references and interpolation-substituted values, except
// client-expression attributes which pass through untouched.
func (g *generator) openTag(n *node, attrs []html.Attribute) []Stmt {
	out := appendLit(nil, "<"+n.data)
	for _, a := range attrs {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + key
		}
		if a.Val == "" {
			out = appendLit(out, " "+key)
			continue
		}
		if isClientAttr(key) {
			out = appendLit(out, " "+key+`="`+escapeAttr(a.Val)+`"`)
			continue
		}

		segs := Tokenize(a.Val, true)
		if !hasExprSegment(segs) {
			val := literalValue(segs)
			if referenceAttrs[key] {
				val = g.res.ResolveAttributeReference(val)
			}
			out = appendLit(out, " "+key+`="`+escapeAttr(val)+`"`)
			continue
		}
		out = appendLit(out, " "+key+`="`)
		for _, seg := range segs {
			if seg.Expr {
				out = append(out, InterpStmt{Expr: seg.Value})
			} else {
				out = appendLit(out, escapeAttr(seg.Value))
			}
		}
		out = appendLit(out, `"`)
	}
	return appendLit(out, ">")
}

func hasExprSegment(segs []Segment) bool {
	for _, s := range segs {
		if s.Expr {
			return true
		}
	}
	return false
}

// literalValue flattens an all-literal segment run back into its text. This
// differs from the raw attribute value only when attribute-mode brace
// escapes were present.
func literalValue(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Value)
	}
	return b.String()
}

func escapeAttr(s string) string {
	return strings.ReplaceAll(s, `"`, "&quot;")
}

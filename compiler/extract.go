package compiler

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ScriptKind categorizes a client-delivered script block.
type ScriptKind int

const (
	// ScriptBundled scripts are processed as modules by the host bundler.
	// A plain <script> with no marker and no src defaults to this category.
	ScriptBundled ScriptKind = iota
	// ScriptInline scripts are re-emitted verbatim, unprocessed.
	ScriptInline
	// ScriptBlocking scripts are hoisted to the document head.
	ScriptBlocking
)

// ClientScript is one extracted client script block, in document order.
type ClientScript struct {
	Kind ScriptKind
	Body string
}

// ParsedTemplate is a template document split into its script blocks and the
// script-free remainder. Template is the original document with every
// recognized script tag removed and is otherwise byte-identical (whitespace,
// doctype, and comments preserved) apart from a leading/trailing trim.
type ParsedTemplate struct {
	BuildScript   string // build-time script body, "" when absent
	ClientScripts []ClientScript
	Template      string
}

// scriptTagRe matches a whole script element, open tag through close tag.
var scriptTagRe = regexp.MustCompile(`(?is)<script\b[^>]*>(.*?)</script\s*>`)

// Parse splits a template document into categorized script blocks plus the
// script-free template remainder. Each matched tag is re-parsed in isolation
// through the structural HTML parser to read its attributes reliably; the
// outer document is never structurally reparsed, so removal is a byte-level
// replacement of the exact matched tag text.
//
// Classification by attribute (bare or data- prefixed): build -> build-time
// script (multiple blocks concatenate in document order); inline, blocking,
// bundle -> the corresponding client category; a src-bearing tag with no body
// is an external script and is left in the template untouched. A script with
// no marker at all defaults to the bundled category.
func Parse(doc string) (*ParsedTemplate, error) {
	pt := &ParsedTemplate{}
	var buildParts []string
	out := doc

	for _, m := range scriptTagRe.FindAllStringSubmatch(doc, -1) {
		tag, body := m[0], m[1]
		attrs := scriptAttrs(tag)

		if hasAttr(attrs, "src") && strings.TrimSpace(body) == "" {
			// External script: excluded from extraction, never removed.
			continue
		}

		switch {
		case hasMarker(attrs, "build"):
			buildParts = append(buildParts, strings.TrimSpace(body))
		case hasMarker(attrs, "inline"):
			pt.ClientScripts = append(pt.ClientScripts, ClientScript{Kind: ScriptInline, Body: body})
		case hasMarker(attrs, "blocking"):
			pt.ClientScripts = append(pt.ClientScripts, ClientScript{Kind: ScriptBlocking, Body: body})
		default:
			// Covers an explicit bundle marker and the unmarked default.
			pt.ClientScripts = append(pt.ClientScripts, ClientScript{Kind: ScriptBundled, Body: body})
		}
		out = strings.Replace(out, tag, "", 1)
	}

	pt.BuildScript = strings.Join(buildParts, "\n")
	pt.Template = strings.TrimSpace(out)
	return pt, nil
}

// scriptAttrs re-parses a single matched script tag through the structural
// parser and returns its attributes. A tag the parser cannot make sense of
// yields no attributes rather than an error; the extractor must not crash on
// malformed input.
func scriptAttrs(tag string) []html.Attribute {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(tag), body)
	if err != nil {
		return nil
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script {
			return n.Attr
		}
	}
	return nil
}

// hasAttr reports attribute presence. The value is irrelevant; an empty
// src still marks an external script.
func hasAttr(attrs []html.Attribute, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// hasMarker reports whether the bare or data- prefixed form of a marker
// attribute is present.
func hasMarker(attrs []html.Attribute, name string) bool {
	for _, a := range attrs {
		if a.Key == name || a.Key == "data-"+name {
			return true
		}
	}
	return false
}

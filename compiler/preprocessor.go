package compiler

import (
	"fmt"
	"regexp"
)

// selfClosingRe matches a self-closing tag, tolerating quoted attribute
// values containing '>' or '/'.
var selfClosingRe = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9-]*)((?:[^>"']|"[^"]*"|'[^']*')*?)\s*/>`)

// expandSelfClosing rewrites self-closing syntax on non-void elements into an
// explicit open/close pair before structural parsing. The tokenizer used for
// the template body does not treat arbitrary custom tags (components, slots)
// as self-closing, so <card-component name="x"/> must become
// <card-component name="x"></card-component> first. Void elements keep their
// original spelling.
func expandSelfClosing(src string) string {
	return selfClosingRe.ReplaceAllStringFunc(src, func(m string) string {
		sub := selfClosingRe.FindStringSubmatch(m)
		name, attrs := sub[1], sub[2]
		if voidElements[name] {
			return m
		}
		return fmt.Sprintf("<%s%s></%s>", name, attrs, name)
	})
}

// voidElements are the HTML elements with no closing tag; they emit an open
// tag only.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

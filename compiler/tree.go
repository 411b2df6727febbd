package compiler

import (
	"strings"

	"golang.org/x/net/html"
)

// nodeType discriminates the faithful template tree. The tree deliberately
// stays close to the source text instead of applying browser normalization:
// no implied html/head/body insertion, no node reparenting, raw text kept
// with entities undecoded. Doctype and comments survive as their raw bytes.
type nodeType int

const (
	nodeDocument nodeType = iota
	nodeElement
	nodeText
	nodeComment
	nodeDoctype
)

type node struct {
	kind     nodeType
	data     string // tag name for elements, raw bytes otherwise
	attrs    []html.Attribute
	children []*node
}

// parseTree builds the faithful node tree from a script-free template using
// the x/net/html tokenizer. Unbalanced close tags are tolerated: a close tag
// with no matching open element on the stack is dropped, and elements left
// open at end of input are closed implicitly.
func parseTree(src string) *node {
	z := html.NewTokenizer(strings.NewReader(src))
	root := &node{kind: nodeDocument}
	stack := []*node{root}
	top := func() *node { return stack[len(stack)-1] }

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return root
		case html.TextToken:
			raw := string(z.Raw())
			t := top()
			if n := len(t.children); n > 0 && t.children[n-1].kind == nodeText {
				t.children[n-1].data += raw
				continue
			}
			t.children = append(t.children, &node{kind: nodeText, data: raw})
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			n := &node{kind: nodeElement, data: tok.Data, attrs: tok.Attr}
			top().children = append(top().children, n)
			if tt == html.StartTagToken && !voidElements[tok.Data] {
				stack = append(stack, n)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].data == string(name) {
					stack = stack[:i]
					break
				}
			}
		case html.CommentToken, html.DoctypeToken:
			kind := nodeComment
			if tt == html.DoctypeToken {
				kind = nodeDoctype
			}
			top().children = append(top().children, &node{kind: kind, data: string(z.Raw())})
		}
	}
}

// isWhitespaceText reports whether n is a text node containing only
// whitespace. Such nodes do not break a conditional chain.
func isWhitespaceText(n *node) bool {
	return n.kind == nodeText && strings.TrimSpace(n.data) == ""
}

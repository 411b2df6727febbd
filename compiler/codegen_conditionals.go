package compiler

import "golang.org/x/net/html"

// conditionalChain compiles an ordered run of condition-marked siblings into
// one chain statement. nodes[*i] carries the primary marker; following
// siblings carrying else-if markers extend the chain and an optional final
// else sibling terminates it. Whitespace-only text between members does not
// break the chain; whitespace that turns out not to precede another member is
// replayed after the chain so the surrounding formatting survives.
//
// An orphaned else-if or else (no qualifying predecessor) is a lint-level
// diagnostic, not a compile concern: children() never routes it here, and
// elementStmts renders it unconditionally with the marker consumed.
func (g *generator) conditionalChain(nodes []*node, i *int, dirs map[string]string, rest []html.Attribute) []Stmt {
	first := nodes[*i]
	cond := dirs["if"]
	delete(dirs, "if")
	branches := []CondBranch{{Cond: cond, Body: g.elementStmts(first, dirs, rest)}}
	*i++

	var pendingWS string
	for *i < len(nodes) {
		n := nodes[*i]
		if isWhitespaceText(n) {
			pendingWS += n.data
			*i++
			continue
		}
		if n.kind != nodeElement {
			break
		}
		ndirs, nrest := directives(n)
		if cond, ok := ndirs["else-if"]; ok {
			delete(ndirs, "else-if")
			branches = append(branches, CondBranch{Cond: cond, Body: g.elementStmts(n, ndirs, nrest)})
			*i++
			pendingWS = ""
			continue
		}
		if _, ok := ndirs["else"]; ok {
			delete(ndirs, "else")
			branches = append(branches, CondBranch{Cond: "", Body: g.elementStmts(n, ndirs, nrest)})
			*i++
			pendingWS = ""
		}
		break
	}

	out := []Stmt{CondStmt{Branches: branches}}
	return appendLit(out, pendingWS)
}

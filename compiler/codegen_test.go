package compiler

import (
	"os"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

// compileDoc parses and compiles a template document with a fixed resolver
// so snapshots stay stable.
func compileDoc(t *testing.T, doc string) *Program {
	t.Helper()
	pt, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	prog, err := Compile(pt, Options{Resolver: &Resolver{Root: "/proj", DefaultExt: ".html"}})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return prog
}

// TestCompile_StaticMarkup_SingleLiteral verifies a directive-free template
// compiles to one literal statement.
func TestCompile_StaticMarkup_SingleLiteral(t *testing.T) {
	prog := compileDoc(t, `<div class="box"><p>hello</p></div>`)
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body))
	}
	lit, ok := prog.Body[0].(LiteralStmt)
	if !ok {
		t.Fatalf("expected literal statement, got %T", prog.Body[0])
	}
	if !strings.Contains(lit.Text, `<div class="box">`) || !strings.Contains(lit.Text, "</div>") {
		t.Errorf("literal does not reproduce the markup: %q", lit.Text)
	}
}

// TestCompile_Source_Deterministic verifies repeated compilation of the
// same document yields byte-identical source.
func TestCompile_Source_Deterministic(t *testing.T) {
	doc := `<script build>
import card from "~/components/card"
title = page.title
</script>
<section each="item in items" if="items">
  <card-component name="{item.name}"></card-component>
</section>`
	a := compileDoc(t, doc)
	b := compileDoc(t, doc)
	if a.Source != b.Source {
		t.Error("compilation is not deterministic")
	}
}

// TestCompile_BuildScript_ImportsAndAssignments verifies the build script
// lowers to deferred-load and assignment statements ahead of the markup.
func TestCompile_BuildScript_ImportsAndAssignments(t *testing.T) {
	prog := compileDoc(t, `<script build>
import header from "~/components/site-header"
greeting = "hi " + user.name
</script>
<p>body</p>`)

	imp, ok := prog.Body[0].(ImportStmt)
	if !ok {
		t.Fatalf("expected import first, got %T", prog.Body[0])
	}
	if imp.Name != "header" || imp.Path != "components/site-header.html" {
		t.Errorf("unexpected import lowering: %+v", imp)
	}
	asn, ok := prog.Body[1].(AssignStmt)
	if !ok {
		t.Fatalf("expected assignment second, got %T", prog.Body[1])
	}
	if asn.Name != "greeting" || asn.Expr != `"hi " + user.name` {
		t.Errorf("unexpected assignment lowering: %+v", asn)
	}
}

// TestCompile_MultilineAssignment_JoinedByBrackets verifies a build-script
// statement spanning lines inside an open bracket stays one statement.
func TestCompile_MultilineAssignment_JoinedByBrackets(t *testing.T) {
	prog := compileDoc(t, `<script build>
nav = [
  "home",
  "about"
]
</script>
<p></p>`)
	asn, ok := prog.Body[0].(AssignStmt)
	if !ok {
		t.Fatalf("expected assignment, got %T", prog.Body[0])
	}
	if !strings.Contains(asn.Expr, `"home"`) || !strings.Contains(asn.Expr, `"about"`) {
		t.Errorf("multi-line list split apart: %q", asn.Expr)
	}
}

// TestCompile_ConditionalChain_OneStatement verifies if/else-if/else
// siblings compile into a single branch chain.
func TestCompile_ConditionalChain_OneStatement(t *testing.T) {
	prog := compileDoc(t, `<div>
<p if="a == 1">one</p>
<p else-if="a == 2">two</p>
<p else>many</p>
</div>`)

	var cond *CondStmt
	for _, s := range prog.Body {
		if c, ok := s.(CondStmt); ok {
			if cond != nil {
				t.Fatal("chain split into multiple conditional statements")
			}
			c := c
			cond = &c
		}
	}
	if cond == nil {
		t.Fatal("no conditional statement produced")
	}
	if len(cond.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(cond.Branches))
	}
	if cond.Branches[0].Cond != "a == 1" || cond.Branches[1].Cond != "a == 2" || cond.Branches[2].Cond != "" {
		t.Errorf("unexpected branch conditions: %+v", cond.Branches)
	}
}

// TestCompile_EachDirective_LoopStatement verifies loop lowering and that a
// malformed each value leaves the element unlooped.
func TestCompile_EachDirective_LoopStatement(t *testing.T) {
	prog := compileDoc(t, `<li data-each="item in list">{item}</li>`)
	loop, ok := prog.Body[0].(EachStmt)
	if !ok {
		t.Fatalf("expected loop statement, got %T", prog.Body[0])
	}
	if loop.Var != "item" || loop.Expr != "list" {
		t.Errorf("unexpected loop lowering: %+v", loop)
	}

	prog = compileDoc(t, `<li each="not a loop header">x</li>`)
	if _, ok := prog.Body[0].(EachStmt); ok {
		t.Error("malformed each value still produced a loop")
	}
}

// TestCompile_BlockingScript_HoistedAfterHeadOpen verifies head placement
// of blocking scripts and the no-head fallback.
func TestCompile_BlockingScript_HoistedAfterHeadOpen(t *testing.T) {
	prog := compileDoc(t, `<html><head><title>t</title></head><body></body></html><script blocking>boot()</script>`)
	lit, ok := prog.Body[0].(LiteralStmt)
	if !ok {
		t.Fatalf("expected literal body, got %T", prog.Body[0])
	}
	headIdx := strings.Index(lit.Text, "<head>")
	scriptIdx := strings.Index(lit.Text, "<script>boot()</script>")
	titleIdx := strings.Index(lit.Text, "<title>")
	if headIdx < 0 || scriptIdx < 0 {
		t.Fatalf("missing head or hoisted script: %q", lit.Text)
	}
	if !(headIdx < scriptIdx && scriptIdx < titleIdx) {
		t.Errorf("blocking script not hoisted after head open: %q", lit.Text)
	}

	prog = compileDoc(t, `<div>content</div><script blocking>boot()</script>`)
	lit, ok = prog.Body[0].(LiteralStmt)
	if !ok {
		t.Fatalf("expected literal body, got %T", prog.Body[0])
	}
	if !strings.HasPrefix(lit.Text, "<script>boot()</script>") {
		t.Errorf("headless document did not prepend blocking script: %q", lit.Text)
	}
}

// TestCompile_InlineScriptAndClientEntry_AppendedInOrder verifies the tail
// of the generated body.
func TestCompile_InlineScriptAndClientEntry_AppendedInOrder(t *testing.T) {
	pt, err := Parse(`<main></main><script inline>tick()</script>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	prog, err := Compile(pt, Options{ClientEntryURL: "/app.js"})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	lit, ok := prog.Body[len(prog.Body)-1].(LiteralStmt)
	if !ok {
		t.Fatalf("expected trailing literal, got %T", prog.Body[len(prog.Body)-1])
	}
	inline := strings.Index(lit.Text, "<script>tick()</script>")
	entry := strings.Index(lit.Text, `<script type="module" src="/app.js"></script>`)
	if inline < 0 || entry < 0 || inline > entry {
		t.Errorf("unexpected document tail: %q", lit.Text)
	}
}

// TestCompile_ComponentTag_PropsSpreadAndSlots verifies component lowering:
// binding name, prop forms, spread, and slot partitioning.
func TestCompile_ComponentTag_PropsSpreadAndSlots(t *testing.T) {
	prog := compileDoc(t, `<site-header-component title="{page.title}" class="wide" props="{...page.header}">
  <span slot="actions">edit</span>
  <p>intro</p>
</site-header-component>`)

	comp, ok := prog.Body[0].(ComponentStmt)
	if !ok {
		t.Fatalf("expected component statement, got %T", prog.Body[0])
	}
	if comp.Binding != "siteheader" {
		t.Errorf("unexpected binding: %q", comp.Binding)
	}
	if !comp.HasSpread || comp.Spread != "...page.header" && comp.Spread != "page.header" {
		t.Errorf("spread not lowered: %+v", comp)
	}
	propNames := map[string]bool{}
	for _, p := range comp.Props {
		propNames[p.Name] = true
	}
	if !propNames["title"] || !propNames["class"] {
		t.Errorf("props missing: %+v", comp.Props)
	}
	slotNames := make([]string, len(comp.Slots))
	for i, s := range comp.Slots {
		slotNames[i] = s.Name
	}
	found := map[string]bool{}
	for _, n := range slotNames {
		found[n] = true
	}
	if !found["actions"] || !found["default"] {
		t.Errorf("slot partitioning wrong: %v", slotNames)
	}
}

// TestCompile_SlotElement_FallbackBody verifies a slot placeholder compiles
// with its children as fallback.
func TestCompile_SlotElement_FallbackBody(t *testing.T) {
	prog := compileDoc(t, `<slot name="sidebar"><p>default sidebar</p></slot>`)
	slot, ok := prog.Body[0].(SlotStmt)
	if !ok {
		t.Fatalf("expected slot statement, got %T", prog.Body[0])
	}
	if slot.Name != "sidebar" {
		t.Errorf("unexpected slot name: %q", slot.Name)
	}
	if len(slot.Fallback) == 0 {
		t.Error("fallback body dropped")
	}
}

// TestCompile_GeneratedSource_Snapshot pins the full source text for a
// template exercising every statement kind.
func TestCompile_GeneratedSource_Snapshot(t *testing.T) {
	prog := compileDoc(t, `<script build>
import card from "~/components/card"
items = page.items
</script>
<main>
  <h1>{page.title}</h1>
  <ul if="items">
    <li each="item in items">{item.label}</li>
  </ul>
  <p else>empty</p>
  <slot name="footer"><small>no footer</small></slot>
  <card-component label="{page.cta}"></card-component>
</main>`)
	snaps.WithConfig(snaps.Ext(".go")).MatchSnapshot(t, prog.Source)
}

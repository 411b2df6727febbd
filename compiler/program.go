package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Stmt is one statement of a compiled render function. The code generator
// walks the template tree and produces a statement tree; the runtime executes
// it, and renderSource prints it as the source text of a single render
// function. Both views are derived from the same statements, so they cannot
// drift apart.
type Stmt interface{ stmt() }

// LiteralStmt appends a literal text run to the output accumulator.
type LiteralStmt struct{ Text string }

// InterpStmt evaluates an opaque expression and appends its string form.
type InterpStmt struct{ Expr string }

// CondBranch is one branch of a conditional chain. An empty Cond marks the
// terminal fallback branch.
type CondBranch struct {
	Cond string
	Body []Stmt
}

// CondStmt is a full if / else-if / else chain.
type CondStmt struct{ Branches []CondBranch }

// EachStmt renders Body once per element of the evaluated collection, with
// the element bound to Var inside the body.
type EachStmt struct {
	Var  string
	Expr string
	Body []Stmt
}

// SlotStmt appends the named entry of the current scope's slot map, falling
// back to the compiled fallback content when the entry is absent.
type SlotStmt struct {
	Name     string
	Fallback []Stmt
}

// ImportStmt binds a component loaded through the runtime's module loader.
// The path has already been resolved; loading happens at render time, which
// is what rewriting a static import into a dynamic one buys.
type ImportStmt struct {
	Name string
	Path string
}

// AssignStmt evaluates an opaque build-script expression and binds the result
// in the render scope.
type AssignStmt struct {
	Name string
	Expr string
}

// Prop is one component prop entry. Expr is set when the attribute value was
// a single whole-value interpolation, in which case the evaluated value is
// passed through untouched; otherwise Segments reconstructs a string value.
type Prop struct {
	Name     string
	Expr     string
	Segments []Segment
}

// SlotContent is the compiled content captured for one named slot of a
// component invocation, in first-appearance order.
type SlotContent struct {
	Name string
	Body []Stmt
}

// ComponentStmt invokes a component through the runtime's component-render
// entry point. Spread, when present, contributes a props object evaluated
// first; individual props are applied after it and win on key collision.
type ComponentStmt struct {
	Binding   string
	Spread    string
	HasSpread bool
	Props     []Prop
	Slots     []SlotContent
}

func (LiteralStmt) stmt()   {}
func (InterpStmt) stmt()    {}
func (CondStmt) stmt()      {}
func (EachStmt) stmt()      {}
func (SlotStmt) stmt()      {}
func (ImportStmt) stmt()    {}
func (AssignStmt) stmt()    {}
func (ComponentStmt) stmt() {}

// Program is a compiled template: the executable statement tree plus the
// deterministic source text of the render function it describes.
type Program struct {
	Body   []Stmt
	Source string
}

// emitter prints a statement tree as render-function source. Every escaping
// and formatting decision for generated code lives in its methods, one per
// statement kind; call sites never concatenate source text themselves.
type emitter struct {
	b       strings.Builder
	indent  int
	writers []string // accumulator variable stack; last is the active one
	seq     int      // counter for generated local names
}

func (e *emitter) line(format string, args ...any) {
	e.b.WriteString(strings.Repeat("\t", e.indent))
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

func (e *emitter) writer() string { return e.writers[len(e.writers)-1] }

func (e *emitter) next(prefix string) string {
	e.seq++
	return fmt.Sprintf("%s%d", prefix, e.seq)
}

// renderSource assembles the full source of one render function: destructure
// the well-known context fields, splice the build-script statements, declare
// the accumulator, emit the body, return the accumulator.
func renderSource(body []Stmt) string {
	e := &emitter{writers: []string{"b"}}
	e.line("func(ctx context.Context, rc *runtime.RenderContext) (string, error) {")
	e.indent++
	e.line("props, slots, params, url, request := rc.Props, rc.Slots, rc.Params, rc.URL, rc.Request")
	e.line("_, _, _, _, _ = props, slots, params, url, request")
	e.line("var b strings.Builder")
	e.stmts(body)
	e.line("return b.String(), rc.Err()")
	e.indent--
	e.line("}")
	return e.b.String()
}

func (e *emitter) stmts(body []Stmt) {
	for _, s := range body {
		switch s := s.(type) {
		case LiteralStmt:
			e.literal(s)
		case InterpStmt:
			e.interp(s)
		case CondStmt:
			e.cond(s)
		case EachStmt:
			e.each(s)
		case SlotStmt:
			e.slot(s)
		case ImportStmt:
			e.line("rc.Set(%s, rc.Load(ctx, %s))", strconv.Quote(s.Name), strconv.Quote(s.Path))
		case AssignStmt:
			e.line("rc.Set(%s, rc.Eval(%s))", strconv.Quote(s.Name), strconv.Quote(s.Expr))
		case ComponentStmt:
			e.component(s)
		}
	}
}

func (e *emitter) literal(s LiteralStmt) {
	e.line("%s.WriteString(%s)", e.writer(), strconv.Quote(s.Text))
}

func (e *emitter) interp(s InterpStmt) {
	e.line("%s.WriteString(rc.Str(rc.Eval(%s)))", e.writer(), strconv.Quote(s.Expr))
}

func (e *emitter) cond(s CondStmt) {
	for i, br := range s.Branches {
		switch {
		case i == 0:
			e.line("if rc.Truthy(rc.Eval(%s)) {", strconv.Quote(br.Cond))
		case br.Cond != "":
			e.indent--
			e.line("} else if rc.Truthy(rc.Eval(%s)) {", strconv.Quote(br.Cond))
		default:
			e.indent--
			e.line("} else {")
		}
		e.indent++
		e.stmts(br.Body)
	}
	e.indent--
	e.line("}")
}

func (e *emitter) each(s EachStmt) {
	v := e.next("v")
	e.line("for _, %s := range rc.Seq(rc.Eval(%s)) {", v, strconv.Quote(s.Expr))
	e.indent++
	e.line("rc.Set(%s, %s)", strconv.Quote(s.Var), v)
	e.stmts(s.Body)
	e.indent--
	e.line("}")
}

func (e *emitter) slot(s SlotStmt) {
	e.line("if s, ok := slots[%s]; ok {", strconv.Quote(s.Name))
	e.indent++
	e.line("%s.WriteString(s)", e.writer())
	e.indent--
	e.line("} else {")
	e.indent++
	e.stmts(s.Fallback)
	e.indent--
	e.line("}")
}

func (e *emitter) component(s ComponentStmt) {
	slotsVar := e.next("slots")
	e.line("%s := map[string]string{}", slotsVar)
	for _, sc := range s.Slots {
		sb := e.next("sb")
		e.line("{")
		e.indent++
		e.line("var %s strings.Builder", sb)
		e.writers = append(e.writers, sb)
		e.stmts(sc.Body)
		e.writers = e.writers[:len(e.writers)-1]
		e.line("%s[%s] = %s.String()", slotsVar, strconv.Quote(sc.Name), sb)
		e.indent--
		e.line("}")
	}
	propsVar := e.next("props")
	if s.HasSpread {
		e.line("%s := rc.Merge(rc.Eval(%s))", propsVar, strconv.Quote(s.Spread))
	} else {
		e.line("%s := map[string]any{}", propsVar)
	}
	for _, p := range s.Props {
		if p.Expr != "" {
			e.line("%s[%s] = rc.Eval(%s)", propsVar, strconv.Quote(p.Name), strconv.Quote(p.Expr))
		} else {
			e.line("%s[%s] = %s", propsVar, strconv.Quote(p.Name), CompileFromSegments(p.Segments))
		}
	}
	out := e.next("out")
	e.line("%s, err := rc.RenderComponent(ctx, rc.Get(%s), %s, %s)", out, strconv.Quote(s.Binding), propsVar, slotsVar)
	e.line("if err != nil {")
	e.indent++
	e.line(`return "", err`)
	e.indent--
	e.line("}")
	e.line("%s.WriteString(%s)", e.writer(), out)
}

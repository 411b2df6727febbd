package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/jamiewilson/aero/compiler"
)

// executor runs one compiled program. Expressions are compiled on first use
// and cached for the lifetime of the program; the cache is safe for
// concurrent renders of the same program.
type executor struct {
	prog  *compiler.Program
	cache sync.Map // expression text -> *vm.Program
}

// FuncOf wraps a compiled program as a render function. The returned
// function is the value registered with the dispatcher; concurrent calls
// share only the program and its expression cache.
func FuncOf(p *compiler.Program) RenderFunc {
	ex := &executor{prog: p}
	return func(ctx context.Context, rc *RenderContext) (string, error) {
		rc.exec = ex
		var b strings.Builder
		if err := ex.run(ctx, p.Body, rc, &b); err != nil {
			return "", err
		}
		return b.String(), rc.Err()
	}
}

func (ex *executor) run(ctx context.Context, body []compiler.Stmt, rc *RenderContext, b *strings.Builder) error {
	for _, s := range body {
		switch s := s.(type) {
		case compiler.LiteralStmt:
			b.WriteString(s.Text)

		case compiler.InterpStmt:
			v, err := ex.eval(s.Expr, rc)
			if err != nil {
				return err
			}
			b.WriteString(Str(v))

		case compiler.AssignStmt:
			v, err := ex.eval(s.Expr, rc)
			if err != nil {
				return err
			}
			rc.Set(s.Name, v)

		case compiler.ImportStmt:
			if rc.load == nil {
				return fmt.Errorf("import %q: no module loader in this context", s.Path)
			}
			v, err := rc.load(ctx, s.Path)
			if err != nil {
				return fmt.Errorf("import %q: %w", s.Path, err)
			}
			rc.Set(s.Name, v)

		case compiler.CondStmt:
			if err := ex.runCond(ctx, s, rc, b); err != nil {
				return err
			}

		case compiler.EachStmt:
			if err := ex.runEach(ctx, s, rc, b); err != nil {
				return err
			}

		case compiler.SlotStmt:
			if content, ok := rc.Slots[s.Name]; ok {
				b.WriteString(content)
				continue
			}
			if err := ex.run(ctx, s.Fallback, rc, b); err != nil {
				return err
			}

		case compiler.ComponentStmt:
			if err := ex.runComponent(ctx, s, rc, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ex *executor) runCond(ctx context.Context, s compiler.CondStmt, rc *RenderContext, b *strings.Builder) error {
	for _, br := range s.Branches {
		if br.Cond != "" {
			v, err := ex.eval(br.Cond, rc)
			if err != nil {
				return err
			}
			if !Truthy(v) {
				continue
			}
		}
		return ex.run(ctx, br.Body, rc, b)
	}
	return nil
}

// runEach binds the loop variable for each element, shadowing any existing
// binding of the same name and restoring it afterward.
func (ex *executor) runEach(ctx context.Context, s compiler.EachStmt, rc *RenderContext, b *strings.Builder) error {
	v, err := ex.eval(s.Expr, rc)
	if err != nil {
		return err
	}
	old, had := rc.vars[s.Var]
	defer func() {
		if had {
			rc.vars[s.Var] = old
		} else {
			delete(rc.vars, s.Var)
		}
	}()
	for _, item := range Seq(v) {
		rc.vars[s.Var] = item
		if err := ex.run(ctx, s.Body, rc, b); err != nil {
			return err
		}
	}
	return nil
}

func (ex *executor) runComponent(ctx context.Context, s compiler.ComponentStmt, rc *RenderContext, b *strings.Builder) error {
	component := rc.Get(s.Binding)
	if component == nil {
		return fmt.Errorf("component %q is not bound; missing import in the build script", s.Binding)
	}

	props := map[string]any{}
	if s.HasSpread {
		v, err := ex.eval(s.Spread, rc)
		if err != nil {
			return err
		}
		for k, val := range Merge(v) {
			props[k] = val
		}
	}
	// Individual props come after the spread so they win on key collision.
	for _, p := range s.Props {
		if p.Expr != "" {
			v, err := ex.eval(p.Expr, rc)
			if err != nil {
				return err
			}
			props[p.Name] = v
			continue
		}
		str, err := ex.segmentsString(p.Segments, rc)
		if err != nil {
			return err
		}
		props[p.Name] = str
	}

	slots := map[string]string{}
	for _, sc := range s.Slots {
		var sb strings.Builder
		if err := ex.run(ctx, sc.Body, rc, &sb); err != nil {
			return err
		}
		slots[sc.Name] = sb.String()
	}

	if rc.renderComponent == nil {
		return fmt.Errorf("component %q: no component renderer in this context", s.Binding)
	}
	out, err := rc.renderComponent(ctx, component, props, slots)
	if err != nil {
		return err
	}
	b.WriteString(out)
	return nil
}

// segmentsString flattens a tokenized attribute value into its rendered
// string: literal segments verbatim, interpolations evaluated and
// stringified.
func (ex *executor) segmentsString(segs []compiler.Segment, rc *RenderContext) (string, error) {
	var b strings.Builder
	for _, seg := range segs {
		if !seg.Expr {
			b.WriteString(seg.Value)
			continue
		}
		v, err := ex.eval(seg.Value, rc)
		if err != nil {
			return "", err
		}
		b.WriteString(Str(v))
	}
	return b.String(), nil
}

// eval evaluates opaque expression text against the render scope. Programs
// are compiled once per expression per template; undefined variables resolve
// to nil rather than failing the compile, matching the permissive contract
// of template expressions.
func (ex *executor) eval(src string, rc *RenderContext) (any, error) {
	var prog *vm.Program
	if cached, ok := ex.cache.Load(src); ok {
		prog = cached.(*vm.Program)
	} else {
		compiled, err := expr.Compile(src, expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("expression %q: %w", strings.TrimSpace(src), err)
		}
		ex.cache.Store(src, compiled)
		prog = compiled
	}
	out, err := expr.Run(prog, rc.vars)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", strings.TrimSpace(src), err)
	}
	return out, nil
}

// Eval is the generated-source contract for expression evaluation: it
// records the first failure on the context instead of returning it, so the
// emitted function body stays a flat statement sequence.
func (rc *RenderContext) Eval(src string) any {
	if rc.exec == nil {
		rc.fail(fmt.Errorf("expression %q: context not bound to a program", strings.TrimSpace(src)))
		return nil
	}
	v, err := rc.exec.eval(src, rc)
	if err != nil {
		rc.fail(err)
		return nil
	}
	return v
}

// Load resolves a deferred import through the context's module loader.
func (rc *RenderContext) Load(ctx context.Context, path string) any {
	if rc.load == nil {
		rc.fail(fmt.Errorf("import %q: no module loader in this context", path))
		return nil
	}
	v, err := rc.load(ctx, path)
	if err != nil {
		rc.fail(fmt.Errorf("import %q: %w", path, err))
		return nil
	}
	return v
}

// RenderComponent renders a directly referenced component with the given
// props and slots, using the same context-construction discipline as a page
// render.
func (rc *RenderContext) RenderComponent(ctx context.Context, component any, props map[string]any, slots map[string]string) (string, error) {
	if rc.renderComponent == nil {
		return "", fmt.Errorf("no component renderer in this context")
	}
	return rc.renderComponent(ctx, component, props, slots)
}

// Str, Truthy, Seq and Merge are re-exposed on the context so generated
// source reads as a sequence of rc calls.
func (rc *RenderContext) Str(v any) string           { return Str(v) }
func (rc *RenderContext) Truthy(v any) bool          { return Truthy(v) }
func (rc *RenderContext) Seq(v any) []any            { return Seq(v) }
func (rc *RenderContext) Merge(v any) map[string]any { return Merge(v) }

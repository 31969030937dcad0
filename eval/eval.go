// Package eval turns a math syntax tree into typeset content.
//
// Evaluation does not stop at the first failure: a failing expression is
// replaced by empty content and its diagnostic is collected, so one call
// reports every problem in the input.
package eval

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gogpu/mathspan/content"
	"github.com/gogpu/mathspan/syntax"
)

// World is the environment visible to evaluated code.
type World interface {
	// Today returns the current date, or false when none is available.
	Today() (time.Time, bool)
}

// Eval evaluates m. On failure the returned error is an Errors value.
func Eval(m *syntax.Math, w World) (content.Content, error) {
	if m == nil {
		return nil, errors.New("eval: nil math")
	}
	vm := &vm{world: w}
	out := vm.evalMath(m)
	if len(vm.errs) > 0 {
		return nil, vm.errs
	}
	return out, nil
}

type vm struct {
	world World
	errs  Errors
}

// spanError ties an error message to the node it arose at.
type spanError struct {
	span syntax.Span
	err  error
}

func (e *spanError) Error() string { return e.err.Error() }
func (e *spanError) Unwrap() error { return e.err }

func errAt(span syntax.Span, format string, args ...any) error {
	return &spanError{span: span, err: fmt.Errorf(format, args...)}
}

func wrapAt(span syntax.Span, err error) error {
	var se *spanError
	if errors.As(err, &se) {
		return err
	}
	return &spanError{span: span, err: err}
}

func (vm *vm) report(span syntax.Span, err error) {
	var se *spanError
	if errors.As(err, &se) {
		span = se.span
	}
	vm.errs = append(vm.errs, Diagnostic{Span: span, Message: err.Error()})
}

// ----------------------------------------------------------------------------
// Math mode

func (vm *vm) evalMath(m *syntax.Math) content.Content {
	seq := &content.Sequence{Elem: content.At(m.Span())}
	for _, e := range m.Exprs {
		seq.Children = append(seq.Children, vm.mathContent(e))
	}
	return seq
}

// mathContent evaluates e and displays it. Failures are reported and leave
// empty content behind.
func (vm *vm) mathContent(e syntax.Expr) content.Content {
	v, err := vm.evalMathExpr(e)
	if err == nil {
		var c content.Content
		if c, err = vm.display(v, e.Span()); err == nil {
			return c
		}
	}
	vm.report(e.Span(), err)
	return content.Empty(e.Span())
}

// stripped evaluates e, unwrapping one level of round parentheses as
// fraction operands and attachments do.
func (vm *vm) stripped(e syntax.Expr) content.Content {
	if d, ok := e.(*syntax.MathDelimited); ok && d.Close != nil &&
		d.Open.Text == "(" && d.Close.Text == ")" {
		return vm.evalMath(d.Body)
	}
	return vm.mathContent(e)
}

func (vm *vm) evalMathExpr(e syntax.Expr) (Value, error) {
	span := e.Span()
	switch e := e.(type) {
	case *syntax.Math:
		return vm.evalMath(e), nil
	case *syntax.Text:
		return &content.Text{Elem: content.At(span), Text: e.Text}, nil
	case *syntax.MathIdent:
		return vm.lookup(e.Name, span)
	case *syntax.MathShorthand:
		return &content.Text{Elem: content.At(span), Text: e.Symbol, Variant: content.Upright}, nil
	case *syntax.MathAlignPoint:
		return &content.AlignPoint{Elem: content.At(span)}, nil
	case *syntax.MathPrimes:
		return primes(e), nil
	case *syntax.MathFrac:
		return &content.Frac{
			Elem:  content.At(span),
			Num:   vm.stripped(e.Num),
			Denom: vm.stripped(e.Denom),
		}, nil
	case *syntax.MathAttach:
		a := &content.Attach{Elem: content.At(span), Base: vm.mathContent(e.Base)}
		if e.Top != nil {
			a.Top = vm.stripped(e.Top)
		}
		if e.Bottom != nil {
			a.Bottom = vm.stripped(e.Bottom)
		}
		if e.Primes != nil {
			a.Primes = primes(e.Primes)
		}
		return a, nil
	case *syntax.MathRoot:
		r := &content.Root{Elem: content.At(span), Radicand: vm.stripped(e.Radicand)}
		if e.Index != 0 {
			r.Index = &content.Text{Elem: content.At(span), Text: fmt.Sprint(e.Index), Variant: content.Upright}
		}
		return r, nil
	case *syntax.MathDelimited:
		lr := &content.LR{
			Elem: content.At(span),
			Open: &content.Text{Elem: content.At(e.Open.Span()), Text: e.Open.Text, Variant: content.Upright},
			Body: vm.evalMath(e.Body),
		}
		if e.Close != nil {
			lr.Close = &content.Text{Elem: content.At(e.Close.Span()), Text: e.Close.Text, Variant: content.Upright}
		}
		return lr, nil
	case *syntax.Escape:
		return &content.Text{Elem: content.At(span), Text: string(e.Char), Variant: content.Upright}, nil
	case *syntax.Str:
		return &content.Text{Elem: content.At(span), Text: e.Value, Variant: content.Upright}, nil
	case *syntax.Space:
		return content.Empty(span), nil
	case *syntax.FuncCall:
		return vm.evalMathCall(e)
	default:
		return vm.evalCode(e)
	}
}

func primes(p *syntax.MathPrimes) *content.Text {
	return &content.Text{
		Elem:    content.At(p.Span()),
		Text:    strings.Repeat("′", p.Count),
		Variant: content.Upright,
	}
}

// evalMathCall evaluates a call written in math. A callee that is not a
// function is displayed followed by its parenthesized arguments.
func (vm *vm) evalMathCall(call *syntax.FuncCall) (Value, error) {
	callee, err := vm.evalMathExpr(call.Callee)
	if err != nil {
		return nil, err
	}
	if f, ok := callee.(*Func); ok {
		_, math := call.Callee.(*syntax.MathIdent)
		args, err := vm.evalArgs(call.Args, math)
		if err != nil {
			return nil, err
		}
		v, err := f.call(vm, call.Span(), args)
		if err != nil {
			return nil, wrapAt(call.Span(), err)
		}
		return v, nil
	}

	head, err := vm.display(callee, call.Callee.Span())
	if err != nil {
		return nil, err
	}
	argSpan := call.Args.Span()
	body := &content.Sequence{Elem: content.At(argSpan)}
	for i, item := range call.Args.Items {
		if i > 0 {
			body.Children = append(body.Children,
				&content.Text{Elem: content.At(argSpan), Text: ",", Variant: content.Upright})
		}
		e, ok := item.(syntax.Expr)
		if !ok {
			return nil, errAt(item.Span(), "named arguments are only allowed in function calls")
		}
		body.Children = append(body.Children, vm.mathContent(e))
	}
	return &content.Sequence{
		Elem: content.At(call.Span()),
		Children: []content.Content{head, &content.LR{
			Elem:  content.At(argSpan),
			Open:  &content.Text{Elem: content.At(argSpan), Text: "(", Variant: content.Upright},
			Body:  body,
			Close: &content.Text{Elem: content.At(argSpan), Text: ")", Variant: content.Upright},
		}},
	}, nil
}

func (vm *vm) lookup(name string, span syntax.Span) (Value, error) {
	v, ok := lookup(name)
	if !ok {
		return nil, errAt(span, "unknown variable: %s", name)
	}
	// Library content is shared, so hand out a copy carrying the use site.
	if t, ok := v.(*content.Text); ok {
		c := *t
		c.Elem = content.At(span)
		return &c, nil
	}
	return v, nil
}

// display converts v into content placed at span.
func (vm *vm) display(v Value, span syntax.Span) (content.Content, error) {
	switch v := v.(type) {
	case content.Content:
		return v, nil
	case Symbol:
		return &content.Text{Elem: content.At(span), Text: string(v)}, nil
	case NoneValue:
		return content.Empty(span), nil
	case *Func:
		return nil, errAt(span, "function %s cannot be displayed; call it with arguments", v.Name)
	default:
		return &content.Text{Elem: content.At(span), Text: repr(v), Variant: content.Upright}, nil
	}
}

// ----------------------------------------------------------------------------
// Code mode

func (vm *vm) evalCode(e syntax.Expr) (Value, error) {
	span := e.Span()
	switch e := e.(type) {
	case *syntax.Ident:
		return vm.lookup(e.Name, span)
	case *syntax.Int:
		return e.Value, nil
	case *syntax.Float:
		return e.Value, nil
	case *syntax.Bool:
		return e.Value, nil
	case *syntax.None:
		return NoneValue{}, nil
	case *syntax.Auto:
		return AutoValue{}, nil
	case *syntax.Str:
		return e.Value, nil
	case *syntax.Parenthesized:
		return vm.evalCode(e.Expr)
	case *syntax.Array:
		return vm.evalArray(e)
	case *syntax.Dict:
		return vm.evalDict(e)
	case *syntax.ContentBlock:
		return vm.evalMarkup(e.Body), nil
	case *syntax.Equation:
		return &content.Equation{Elem: content.At(span), Body: vm.evalMath(e.Body)}, nil
	case *syntax.Unary:
		return vm.evalUnary(e)
	case *syntax.Binary:
		return vm.evalBinary(e)
	case *syntax.FuncCall:
		return vm.evalCall(e)
	case *syntax.Math, *syntax.Text, *syntax.MathIdent, *syntax.MathShorthand,
		*syntax.MathAlignPoint, *syntax.MathPrimes, *syntax.MathFrac,
		*syntax.MathAttach, *syntax.MathRoot, *syntax.MathDelimited,
		*syntax.Escape, *syntax.Space:
		return vm.evalMathExpr(e)
	default:
		return nil, errAt(span, "unsupported expression %T", e)
	}
}

func (vm *vm) evalArray(a *syntax.Array) (Value, error) {
	out := Array{}
	for _, item := range a.Items {
		switch item := item.(type) {
		case *syntax.Spread:
			v, err := vm.evalCode(item.Expr)
			if err != nil {
				return nil, err
			}
			switch v := v.(type) {
			case Array:
				out = append(out, v...)
			case NoneValue:
			default:
				return nil, errAt(item.Span(), "cannot spread %s into array", typeName(v))
			}
		case syntax.Expr:
			v, err := vm.evalCode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func (vm *vm) evalDict(d *syntax.Dict) (Value, error) {
	out := NewDict()
	for _, item := range d.Items {
		switch item := item.(type) {
		case *syntax.Named:
			v, err := vm.evalCode(item.Expr)
			if err != nil {
				return nil, err
			}
			out.Set(item.Name.Name, v)
		case *syntax.Keyed:
			k, err := vm.evalCode(item.Key)
			if err != nil {
				return nil, err
			}
			key, ok := k.(string)
			if !ok {
				return nil, errAt(item.Key.Span(), "expected string, found %s", typeName(k))
			}
			v, err := vm.evalCode(item.Expr)
			if err != nil {
				return nil, err
			}
			out.Set(key, v)
		case *syntax.Spread:
			v, err := vm.evalCode(item.Expr)
			if err != nil {
				return nil, err
			}
			switch v := v.(type) {
			case *Dict:
				for _, k := range v.Keys() {
					kv, _ := v.Get(k)
					out.Set(k, kv)
				}
			case NoneValue:
			default:
				return nil, errAt(item.Span(), "cannot spread %s into dictionary", typeName(v))
			}
		}
	}
	return out, nil
}

func (vm *vm) evalMarkup(m *syntax.Markup) content.Content {
	seq := &content.Sequence{Elem: content.At(m.Span())}
	for _, e := range m.Exprs {
		span := e.Span()
		switch e := e.(type) {
		case *syntax.Text:
			seq.Children = append(seq.Children, &content.Text{Elem: content.At(span), Text: e.Text, Variant: content.Upright})
		case *syntax.Space:
			seq.Children = append(seq.Children, &content.Text{Elem: content.At(span), Text: " ", Variant: content.Upright})
		case *syntax.Escape:
			seq.Children = append(seq.Children, &content.Text{Elem: content.At(span), Text: string(e.Char), Variant: content.Upright})
		case *syntax.Equation:
			seq.Children = append(seq.Children, vm.evalMath(e.Body))
		default:
			seq.Children = append(seq.Children, vm.mathContent(e))
		}
	}
	return seq
}

func (vm *vm) evalUnary(u *syntax.Unary) (Value, error) {
	v, err := vm.evalCode(u.Expr)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case syntax.OpNeg:
		switch v := v.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		}
	case syntax.OpPos:
		switch v.(type) {
		case int64, float64:
			return v, nil
		}
	case syntax.OpNot:
		if b, ok := v.(bool); ok {
			return !b, nil
		}
	}
	return nil, errAt(u.Span(), "cannot apply '%s' to %s", u.Op, typeName(v))
}

func (vm *vm) evalBinary(b *syntax.Binary) (Value, error) {
	lhs, err := vm.evalCode(b.Lhs)
	if err != nil {
		return nil, err
	}
	if b.Op == syntax.OpAnd || b.Op == syntax.OpOr {
		l, ok := lhs.(bool)
		if !ok {
			return nil, errAt(b.Span(), "cannot apply '%s' to %s", b.Op, typeName(lhs))
		}
		if b.Op == syntax.OpAnd && !l || b.Op == syntax.OpOr && l {
			return l, nil
		}
		rhs, err := vm.evalCode(b.Rhs)
		if err != nil {
			return nil, err
		}
		r, ok := rhs.(bool)
		if !ok {
			return nil, errAt(b.Span(), "cannot apply '%s' to %s", b.Op, typeName(rhs))
		}
		return r, nil
	}
	rhs, err := vm.evalCode(b.Rhs)
	if err != nil {
		return nil, err
	}
	v, err := binary(b.Op, lhs, rhs)
	if err != nil {
		return nil, wrapAt(b.Span(), err)
	}
	return v, nil
}

func binary(op syntax.BinOp, lhs, rhs Value) (Value, error) {
	switch op {
	case syntax.OpEq:
		return equal(lhs, rhs), nil
	case syntax.OpNeq:
		return !equal(lhs, rhs), nil
	case syntax.OpLt, syntax.OpLeq, syntax.OpGt, syntax.OpGeq:
		return compare(op, lhs, rhs)
	}

	if li, ok := lhs.(int64); ok {
		if ri, ok := rhs.(int64); ok {
			switch op {
			case syntax.OpAdd:
				return li + ri, nil
			case syntax.OpSub:
				return li - ri, nil
			case syntax.OpMul:
				return li * ri, nil
			case syntax.OpDiv:
				if ri == 0 {
					return nil, errors.New("cannot divide by zero")
				}
				return float64(li) / float64(ri), nil
			}
		}
	}
	if lf, ok := toFloat(lhs); ok {
		if rf, ok := toFloat(rhs); ok {
			switch op {
			case syntax.OpAdd:
				return lf + rf, nil
			case syntax.OpSub:
				return lf - rf, nil
			case syntax.OpMul:
				return lf * rf, nil
			case syntax.OpDiv:
				if rf == 0 {
					return nil, errors.New("cannot divide by zero")
				}
				return lf / rf, nil
			}
		}
	}
	if op == syntax.OpAdd {
		switch l := lhs.(type) {
		case string:
			if r, ok := rhs.(string); ok {
				return l + r, nil
			}
		case Array:
			if r, ok := rhs.(Array); ok {
				return append(append(Array{}, l...), r...), nil
			}
		case content.Content:
			if r, ok := rhs.(content.Content); ok {
				return &content.Sequence{Elem: content.At(l.Span()), Children: []content.Content{l, r}}, nil
			}
		}
	}
	return nil, fmt.Errorf("cannot apply '%s' to %s and %s", op, typeName(lhs), typeName(rhs))
}

func toFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func compare(op syntax.BinOp, lhs, rhs Value) (Value, error) {
	var c int
	if l, ok := toFloat(lhs); ok {
		r, ok := toFloat(rhs)
		if !ok {
			return nil, fmt.Errorf("cannot compare %s with %s", typeName(lhs), typeName(rhs))
		}
		switch {
		case l < r:
			c = -1
		case l > r:
			c = 1
		}
	} else if l, ok := lhs.(string); ok {
		r, ok := rhs.(string)
		if !ok {
			return nil, fmt.Errorf("cannot compare %s with %s", typeName(lhs), typeName(rhs))
		}
		c = strings.Compare(l, r)
	} else {
		return nil, fmt.Errorf("cannot compare %s with %s", typeName(lhs), typeName(rhs))
	}
	switch op {
	case syntax.OpLt:
		return c < 0, nil
	case syntax.OpLeq:
		return c <= 0, nil
	case syntax.OpGt:
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

func (vm *vm) evalCall(call *syntax.FuncCall) (Value, error) {
	callee, err := vm.evalCode(call.Callee)
	if err != nil {
		return nil, err
	}
	f, ok := callee.(*Func)
	if !ok {
		return nil, errAt(call.Callee.Span(), "expected function, found %s", typeName(callee))
	}
	args, err := vm.evalArgs(call.Args, false)
	if err != nil {
		return nil, err
	}
	v, err := f.call(vm, call.Span(), args)
	if err != nil {
		return nil, wrapAt(call.Span(), err)
	}
	return v, nil
}

// evalArgs evaluates call arguments. Math arguments are evaluated as math so
// failures inside them are reported without aborting the call.
func (vm *vm) evalArgs(a *syntax.Args, math bool) (*Args, error) {
	args := &Args{Named: NewDict()}
	value := func(e syntax.Expr) (Value, error) {
		if math {
			if s, ok := e.(*syntax.Str); ok {
				return s.Value, nil
			}
			return vm.mathContent(e), nil
		}
		return vm.evalCode(e)
	}
	for _, item := range a.Items {
		switch item := item.(type) {
		case *syntax.Named:
			v, err := value(item.Expr)
			if err != nil {
				return nil, err
			}
			args.Named.Set(item.Name.Name, v)
		case *syntax.Spread:
			v, err := vm.evalCode(item.Expr)
			if err != nil {
				return nil, err
			}
			switch v := v.(type) {
			case Array:
				for _, elem := range v {
					args.Pos = append(args.Pos, Arg{Span: item.Span(), Value: elem})
				}
			case *Dict:
				for _, k := range v.Keys() {
					kv, _ := v.Get(k)
					args.Named.Set(k, kv)
				}
			case NoneValue:
			default:
				return nil, errAt(item.Span(), "cannot spread %s", typeName(v))
			}
		case syntax.Expr:
			v, err := value(item)
			if err != nil {
				return nil, err
			}
			args.Pos = append(args.Pos, Arg{Span: item.Span(), Value: v})
		}
	}
	return args, nil
}

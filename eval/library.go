package eval

import (
	"fmt"

	"github.com/gogpu/mathspan/content"
	"github.com/gogpu/mathspan/syntax"
)

// Func is a library function.
type Func struct {
	Name string
	call func(vm *vm, span syntax.Span, args *Args) (Value, error)
}

// Arg is an evaluated positional argument and the span of the expression
// that produced it.
type Arg struct {
	Span  syntax.Span
	Value Value
}

// Args are the evaluated arguments of a call.
type Args struct {
	Pos   []Arg
	Named *Dict
	next  int
}

// Expect takes the next positional argument.
func (a *Args) Expect(what string) (Arg, error) {
	if a.next >= len(a.Pos) {
		return Arg{}, fmt.Errorf("missing argument: %s", what)
	}
	arg := a.Pos[a.next]
	a.next++
	return arg, nil
}

// Rest takes all remaining positional arguments.
func (a *Args) Rest() []Arg {
	rest := a.Pos[a.next:]
	a.next = len(a.Pos)
	return rest
}

// Finish fails when arguments are left unconsumed.
func (a *Args) Finish() error {
	if a.next < len(a.Pos) {
		return fmt.Errorf("unexpected argument")
	}
	for _, k := range a.Named.Keys() {
		return fmt.Errorf("unexpected argument: %s", k)
	}
	return nil
}

// named takes a named argument if present.
func (a *Args) named(name string) (Value, bool) {
	v, ok := a.Named.Get(name)
	if !ok {
		return nil, false
	}
	rest := NewDict()
	for _, k := range a.Named.Keys() {
		if k != name {
			kv, _ := a.Named.Get(k)
			rest.Set(k, kv)
		}
	}
	a.Named = rest
	return v, true
}

var greek = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"zeta": "ζ", "eta": "η", "theta": "θ", "iota": "ι", "kappa": "κ",
	"lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ", "omicron": "ο",
	"pi": "π", "rho": "ρ", "sigma": "σ", "tau": "τ", "upsilon": "υ",
	"phi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",
}

var symbols = map[string]string{
	"oo": "∞", "infinity": "∞", "sum": "∑", "product": "∏",
	"integral": "∫", "partial": "∂", "nabla": "∇", "dots": "…",
	"times": "×", "dot": "·", "plus": "+", "minus": "−",
	"plus.minus": "±", "div": "÷", "approx": "≈", "eq": "=",
	"eq.not": "≠", "lt.eq": "≤", "gt.eq": "≥", "arrow.r": "→",
	"arrow.l": "←", "arrow.r.double": "⇒", "prime": "′", "degree": "°",
}

var operators = []string{
	"sin", "cos", "tan", "cot", "sec", "csc", "arcsin", "arccos", "arctan",
	"sinh", "cosh", "tanh", "log", "ln", "lg", "exp", "lim", "max", "min",
	"sup", "inf", "det", "gcd", "lcm", "arg", "deg", "dim", "ker", "mod",
}

// library is the global scope. It is built once and never mutated.
var library = buildLibrary()

func buildLibrary() map[string]Value {
	scope := make(map[string]Value)
	for name, s := range greek {
		scope[name] = Symbol(s)
	}
	for name, s := range symbols {
		scope[name] = Symbol(s)
	}
	for _, name := range operators {
		scope[name] = &content.Text{Text: name, Variant: content.Upright, Op: true}
	}
	for _, f := range []*Func{
		{Name: "frac", call: callFrac},
		{Name: "binom", call: callBinom},
		{Name: "sqrt", call: callSqrt},
		{Name: "root", call: callRoot},
		{Name: "abs", call: delimiterFunc("|", "|")},
		{Name: "norm", call: delimiterFunc("‖", "‖")},
		{Name: "floor", call: delimiterFunc("⌊", "⌋")},
		{Name: "ceil", call: delimiterFunc("⌈", "⌉")},
		{Name: "vec", call: callVec},
		{Name: "upright", call: variantFunc(content.Upright)},
		{Name: "italic", call: variantFunc(content.Italic)},
		{Name: "bold", call: variantFunc(content.Bold)},
		{Name: "op", call: callOp},
		{Name: "overline", call: lineFunc(true)},
		{Name: "underline", call: lineFunc(false)},
		{Name: "today", call: callToday},
	} {
		scope[f.Name] = f
	}
	return scope
}

func lookup(name string) (Value, bool) {
	v, ok := library[name]
	return v, ok
}

func expectContent(vm *vm, args *Args, what string) (content.Content, error) {
	arg, err := args.Expect(what)
	if err != nil {
		return nil, err
	}
	return vm.display(arg.Value, arg.Span)
}

func callFrac(vm *vm, span syntax.Span, args *Args) (Value, error) {
	num, err := expectContent(vm, args, "num")
	if err != nil {
		return nil, err
	}
	denom, err := expectContent(vm, args, "denom")
	if err != nil {
		return nil, err
	}
	if err := args.Finish(); err != nil {
		return nil, err
	}
	return &content.Frac{Elem: content.At(span), Num: num, Denom: denom}, nil
}

func callBinom(vm *vm, span syntax.Span, args *Args) (Value, error) {
	upper, err := expectContent(vm, args, "upper")
	if err != nil {
		return nil, err
	}
	lower, err := expectContent(vm, args, "lower")
	if err != nil {
		return nil, err
	}
	if err := args.Finish(); err != nil {
		return nil, err
	}
	return &content.Binom{Elem: content.At(span), Upper: upper, Lower: lower}, nil
}

func callSqrt(vm *vm, span syntax.Span, args *Args) (Value, error) {
	radicand, err := expectContent(vm, args, "radicand")
	if err != nil {
		return nil, err
	}
	if err := args.Finish(); err != nil {
		return nil, err
	}
	return &content.Root{Elem: content.At(span), Radicand: radicand}, nil
}

func callRoot(vm *vm, span syntax.Span, args *Args) (Value, error) {
	index, err := expectContent(vm, args, "index")
	if err != nil {
		return nil, err
	}
	radicand, err := expectContent(vm, args, "radicand")
	if err != nil {
		return nil, err
	}
	if err := args.Finish(); err != nil {
		return nil, err
	}
	return &content.Root{Elem: content.At(span), Index: index, Radicand: radicand}, nil
}

func delimiterFunc(open, close string) func(*vm, syntax.Span, *Args) (Value, error) {
	return func(vm *vm, span syntax.Span, args *Args) (Value, error) {
		body, err := expectContent(vm, args, "body")
		if err != nil {
			return nil, err
		}
		if err := args.Finish(); err != nil {
			return nil, err
		}
		return &content.LR{
			Elem:  content.At(span),
			Open:  &content.Text{Elem: content.At(span), Text: open, Variant: content.Upright},
			Body:  body,
			Close: &content.Text{Elem: content.At(span), Text: close, Variant: content.Upright},
		}, nil
	}
}

var vecDelims = map[string]string{"(": ")", "[": "]", "{": "}", "|": "|", "‖": "‖"}

func callVec(vm *vm, span syntax.Span, args *Args) (Value, error) {
	open := "("
	if v, ok := args.named("delim"); ok {
		s, ok := v.(string)
		if !ok {
			if t, isText := v.(*content.Text); isText {
				s, ok = t.Text, true
			}
		}
		if _, known := vecDelims[s]; !ok || !known {
			return nil, fmt.Errorf("invalid delimiter: %s", repr(v))
		}
		open = s
	}
	var children []content.Content
	for _, arg := range args.Rest() {
		c, err := vm.display(arg.Value, arg.Span)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	if err := args.Finish(); err != nil {
		return nil, err
	}
	return &content.Vec{
		Elem:     content.At(span),
		Children: children,
		Open:     &content.Text{Elem: content.At(span), Text: open, Variant: content.Upright},
		Close:    &content.Text{Elem: content.At(span), Text: vecDelims[open], Variant: content.Upright},
	}, nil
}

func variantFunc(variant content.Variant) func(*vm, syntax.Span, *Args) (Value, error) {
	return func(vm *vm, span syntax.Span, args *Args) (Value, error) {
		body, err := expectContent(vm, args, "body")
		if err != nil {
			return nil, err
		}
		if err := args.Finish(); err != nil {
			return nil, err
		}
		return &content.Styled{Elem: content.At(span), Child: body, Variant: variant}, nil
	}
}

func callOp(vm *vm, span syntax.Span, args *Args) (Value, error) {
	arg, err := args.Expect("text")
	if err != nil {
		return nil, err
	}
	if err := args.Finish(); err != nil {
		return nil, err
	}
	var text string
	switch v := arg.Value.(type) {
	case string:
		text = v
	case *content.Text:
		text = v.Text
	default:
		return nil, fmt.Errorf("expected string, found %s", typeName(v))
	}
	return &content.Text{Elem: content.At(span), Text: text, Variant: content.Upright, Op: true}, nil
}

func lineFunc(over bool) func(*vm, syntax.Span, *Args) (Value, error) {
	return func(vm *vm, span syntax.Span, args *Args) (Value, error) {
		body, err := expectContent(vm, args, "body")
		if err != nil {
			return nil, err
		}
		if err := args.Finish(); err != nil {
			return nil, err
		}
		return &content.Line{Elem: content.At(span), Child: body, Over: over}, nil
	}
}

func callToday(vm *vm, span syntax.Span, args *Args) (Value, error) {
	if err := args.Finish(); err != nil {
		return nil, err
	}
	t, ok := vm.world.Today()
	if !ok {
		return nil, ErrNoDate
	}
	return t.Format("2006-01-02"), nil
}

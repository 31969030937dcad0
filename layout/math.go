package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gogpu/mathspan/content"
	"github.com/gogpu/mathspan/fonts"
	"github.com/gogpu/mathspan/syntax"
)

// ErrNilEquation is returned when there is nothing to lay out.
var ErrNilEquation = errors.New("layout: nil equation")

// Math style levels. Display and text share a size; each script level
// shrinks the font.
const (
	levelDisplay = iota
	levelText
	levelScript
	levelScriptScript
)

var levelScale = [...]float64{1, 1, 0.7, 0.5}

// Dimensions in em of the current size.
const (
	ruleThickness = 0.045
	fracPadding   = 0.1
	scriptSpace   = 0.05
	delimFactor   = 0.901
	largeOpScale  = 1.4
)

// LayoutEquation lays out eq with styles and returns the root frame. Failures
// are reported as Errors.
func LayoutEquation(eq *content.Equation, world World, styles Styles) (*Frame, error) {
	if eq == nil {
		return nil, ErrNilEquation
	}
	ctx := &mathContext{
		book:   world.Book(),
		styles: styles,
		fonts:  make(map[fonts.Variant]*fonts.Font),
		failed: make(map[string]bool),
	}
	base, ok := ctx.font(fonts.Variant{Style: fonts.Normal, Weight: styles.Weight}, eq.Span())
	if !ok {
		return nil, ctx.errs
	}
	ctx.base = base

	st := state{level: levelText}
	if styles.Display || eq.Block {
		st.level = levelDisplay
	}
	frag := ctx.layout(eq.Body, st)
	if len(ctx.errs) > 0 {
		return nil, ctx.errs
	}
	return frag.frame, nil
}

type mathContext struct {
	book   *fonts.Book
	styles Styles
	base   *fonts.Font
	fonts  map[fonts.Variant]*fonts.Font
	failed map[string]bool
	errs   Errors
}

// state is the inherited style of the content being laid out.
type state struct {
	level   int
	variant content.Variant
}

func (st state) frac() state {
	if st.level < levelScriptScript {
		st.level++
	}
	return st
}

func (st state) script() state {
	st.level = max(st.level, levelText) + 1
	if st.level > levelScriptScript {
		st.level = levelScriptScript
	}
	return st
}

// fragment is laid out math together with its atom class.
type fragment struct {
	frame  *Frame
	class  class
	limits bool
	align  bool
}

func emptyFragment() fragment {
	return fragment{frame: &Frame{}}
}

func (ctx *mathContext) size(st state) float64 {
	return ctx.styles.Size * levelScale[st.level]
}

func (ctx *mathContext) axis(st state) float64 {
	return ctx.base.Metrics().AxisHeight * ctx.size(st)
}

func (ctx *mathContext) fail(span syntax.Span, msg string) {
	if ctx.failed[msg] {
		return
	}
	ctx.failed[msg] = true
	ctx.errs = append(ctx.errs, Error{Span: span, Message: msg})
}

func (ctx *mathContext) font(v fonts.Variant, span syntax.Span) (*fonts.Font, bool) {
	if f, ok := ctx.fonts[v]; ok {
		return f, true
	}
	if ctx.book != nil {
		if f, ok := ctx.book.SelectFirst(ctx.styles.Families, v); ok {
			ctx.fonts[v] = f
			return f, true
		}
	}
	ctx.fail(span, fmt.Sprintf("no font could be found for families %s (%s, weight %d)",
		strings.Join(ctx.styles.Families, ", "), v.Style, v.Weight))
	return nil, false
}

func (ctx *mathContext) layout(c content.Content, st state) fragment {
	switch c := c.(type) {
	case *content.Sequence:
		children := flatten(c.Children)
		if len(children) == 1 {
			return ctx.layout(children[0], st)
		}
		return ctx.row(children, st)
	case *content.Text:
		return ctx.text(c, st)
	case *content.Frac:
		return ctx.frac(c.Num, c.Denom, c.Span(), true, st)
	case *content.Binom:
		body := ctx.frac(c.Upper, c.Lower, c.Span(), false, st)
		return ctx.delimited("(", ")", c.Span(), c.Span(), body, st)
	case *content.Attach:
		return ctx.attach(c, st)
	case *content.Root:
		return ctx.root(c, st)
	case *content.LR:
		body := ctx.layout(c.Body, st)
		open, close := "", ""
		openSpan, closeSpan := c.Span(), c.Span()
		if c.Open != nil {
			open, openSpan = c.Open.Text, c.Open.Span()
		}
		if c.Close != nil {
			close, closeSpan = c.Close.Text, c.Close.Span()
		}
		return ctx.delimited(open, close, openSpan, closeSpan, body, st)
	case *content.Vec:
		return ctx.vec(c, st)
	case *content.Styled:
		inner := st
		inner.variant = c.Variant
		return ctx.layout(c.Child, inner)
	case *content.Line:
		return ctx.line(c, st)
	case *content.AlignPoint:
		f := &Frame{}
		f.Push(Point{}, &AlignMark{})
		return fragment{frame: f, align: true}
	case *content.Equation:
		return ctx.layout(c.Body, st)
	default:
		return emptyFragment()
	}
}

// flatten inlines nested sequences so spacing applies across them.
func flatten(children []content.Content) []content.Content {
	var out []content.Content
	for _, c := range children {
		if seq, ok := c.(*content.Sequence); ok {
			out = append(out, flatten(seq.Children)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (ctx *mathContext) row(children []content.Content, st state) fragment {
	frags := make([]fragment, 0, len(children))
	for _, c := range children {
		frags = append(frags, ctx.layout(c, st))
	}

	var classes []class
	for _, f := range frags {
		if !f.align {
			classes = append(classes, f.class)
		}
	}
	reclassify(classes)

	size := ctx.size(st)
	gaps := make([]float64, len(frags))
	prev, k := -1, 0
	for i := range frags {
		if frags[i].align {
			continue
		}
		frags[i].class = classes[k]
		k++
		if prev >= 0 {
			gaps[i] = spacing(frags[prev].class, frags[i].class, st.level >= levelScript) * size
		}
		prev = i
	}
	return fragment{frame: hstack(frags, gaps), class: classOrd}
}

// hstack places frames side by side on a common baseline. gaps[i] is the
// space before frags[i].
func hstack(frags []fragment, gaps []float64) *Frame {
	ascent, descent := 0.0, 0.0
	for _, f := range frags {
		ascent = math.Max(ascent, f.frame.Ascent())
		descent = math.Max(descent, f.frame.Descent())
	}
	out := &Frame{Baseline: ascent}
	x := 0.0
	for i, f := range frags {
		if gaps != nil {
			x += gaps[i]
		}
		out.PushFrame(Pt(x, ascent-f.frame.Baseline), f.frame)
		x += f.frame.Width()
	}
	out.Size = Size{W: x, H: ascent + descent}
	return out
}

func (ctx *mathContext) variant(v content.Variant, text string, st state) fonts.Variant {
	if v == content.Auto {
		v = st.variant
	}
	if v == content.Auto {
		r, _ := utf8.DecodeRuneInString(text)
		if utf8.RuneCountInString(text) == 1 && unicode.IsLetter(r) {
			v = content.Italic
		} else {
			v = content.Upright
		}
	}
	switch v {
	case content.Italic:
		return fonts.Variant{Style: fonts.Italic, Weight: ctx.styles.Weight}
	case content.Bold:
		return fonts.Variant{Style: fonts.Normal, Weight: 700}
	default:
		return fonts.Variant{Style: fonts.Normal, Weight: ctx.styles.Weight}
	}
}

// shape builds a text item for text at size, attributing every glyph to span.
func (ctx *mathContext) shape(f *fonts.Font, text string, size float64, span syntax.Span) *TextItem {
	shaped := f.Shape(text)
	glyphs := make([]Glyph, len(shaped))
	for i, g := range shaped {
		glyphs[i] = Glyph{
			ID:       g.ID,
			XAdvance: g.XAdvance,
			XOffset:  g.XOffset,
			YOffset:  g.YOffset,
			Span:     span,
			Offset:   g.Cluster,
		}
	}
	m := f.Metrics()
	return &TextItem{
		Font:      f,
		Size:      size,
		Fill:      ctx.styles.Fill,
		Text:      text,
		Glyphs:    glyphs,
		Ascender:  m.Ascender * size,
		Descender: m.Descender * size,
	}
}

// textFrame wraps item in a frame. shift moves the item's baseline down
// relative to the frame's baseline.
func textFrame(item *TextItem, shift float64) *Frame {
	ascent := math.Max(item.Ascender-shift, 0)
	descent := math.Max(shift-item.Descender, 0)
	f := &Frame{Size: Size{W: item.Width(), H: ascent + descent}, Baseline: ascent}
	f.Push(Pt(0, ascent+shift), item)
	return f
}

// ink returns the vertical ink extent of item in em, y pointing down.
func ink(item *TextItem) (top, bottom float64, ok bool) {
	top, bottom = math.Inf(1), math.Inf(-1)
	for _, g := range item.Glyphs {
		_, minY, _, maxY, found := item.Font.Bounds(g.ID)
		if !found || minY == maxY {
			continue
		}
		top = math.Min(top, minY)
		bottom = math.Max(bottom, maxY)
	}
	return top, bottom, top < bottom
}

// centered returns the shift that puts item's ink center on the math axis.
func (ctx *mathContext) centered(item *TextItem, st state) float64 {
	top, bottom, ok := ink(item)
	if !ok {
		return 0
	}
	return -ctx.axis(st) - (top+bottom)/2*item.Size
}

func (ctx *mathContext) text(t *content.Text, st state) fragment {
	if t.Text == "" {
		return emptyFragment()
	}
	f, ok := ctx.font(ctx.variant(t.Variant, t.Text, st), t.Span())
	if !ok {
		return emptyFragment()
	}
	cls := classify(t.Text, t.Op)
	display := st.level == levelDisplay
	size := ctx.size(st)

	large := cls == classOp && !t.Op
	if large && display {
		size *= largeOpScale
	}
	item := ctx.shape(f, t.Text, size, t.Span())
	shift := 0.0
	if large {
		shift = ctx.centered(item, st)
	}
	return fragment{
		frame:  textFrame(item, shift),
		class:  cls,
		limits: display && hasLimits(t.Text),
	}
}

func (ctx *mathContext) frac(num, denom content.Content, span syntax.Span, bar bool, st state) fragment {
	size := ctx.size(st)
	thickness := ruleThickness * size
	gap := 2 * thickness
	if st.level == levelDisplay {
		gap = 3 * thickness
	}
	if !bar {
		thickness = 0
		gap *= 2
	}

	n := ctx.layout(num, st.frac()).frame
	d := ctx.layout(denom, st.frac()).frame
	pad := fracPadding * size
	w := math.Max(n.Width(), d.Width()) + 2*pad

	barTop := n.Height() + gap
	denomTop := barTop + thickness + gap

	out := &Frame{
		Size:     Size{W: w, H: denomTop + d.Height()},
		Baseline: barTop + thickness/2 + ctx.axis(st),
	}
	out.PushFrame(Pt((w-n.Width())/2, 0), n)
	if bar {
		fill := ctx.styles.Fill
		out.Push(Pt(0, barTop), &Shape{
			Geometry: RectGeom{Size: Size{W: w, H: thickness}},
			Fill:     &fill,
			Span:     span,
		})
	}
	out.PushFrame(Pt((w-d.Width())/2, denomTop), d)
	return fragment{frame: out, class: classInner}
}

func (ctx *mathContext) attach(a *content.Attach, st state) fragment {
	base := ctx.layout(a.Base, st)
	if a.Primes != nil {
		primes := ctx.layout(a.Primes, st)
		base = fragment{frame: hstack([]fragment{base, primes}, nil), class: base.class, limits: base.limits}
	}
	if a.Top == nil && a.Bottom == nil {
		return base
	}

	scriptSt := st.script()
	var top, bottom *Frame
	if a.Top != nil {
		top = ctx.layout(a.Top, scriptSt).frame
	}
	if a.Bottom != nil {
		bottom = ctx.layout(a.Bottom, scriptSt).frame
	}

	size := ctx.size(st)
	if base.limits {
		return fragment{frame: limits(base.frame, top, bottom, 0.15*size), class: base.class}
	}

	b := base.frame
	thickness := ruleThickness * size
	up := math.Max(0.45*size, b.Ascent()-0.35*size)
	down := math.Max(0.25*size, b.Descent()+0.05*size)
	if top != nil && bottom != nil {
		clearance := (up - top.Descent()) - (bottom.Ascent() - down)
		if clearance < 4*thickness {
			down += 4*thickness - clearance
		}
	}

	ascent, descent := b.Ascent(), b.Descent()
	scriptW := 0.0
	if top != nil {
		ascent = math.Max(ascent, up+top.Ascent())
		scriptW = math.Max(scriptW, top.Width())
	}
	if bottom != nil {
		descent = math.Max(descent, down+bottom.Descent())
		scriptW = math.Max(scriptW, bottom.Width())
	}

	out := &Frame{
		Size:     Size{W: b.Width() + scriptW + scriptSpace*size, H: ascent + descent},
		Baseline: ascent,
	}
	out.PushFrame(Pt(0, ascent-b.Baseline), b)
	if top != nil {
		out.PushGroup(Pt(b.Width(), ascent-up-top.Baseline), top)
	}
	if bottom != nil {
		out.PushGroup(Pt(b.Width(), ascent+down-bottom.Baseline), bottom)
	}
	return fragment{frame: out, class: base.class}
}

// limits stacks top and bottom centered above and below base.
func limits(base, top, bottom *Frame, gap float64) *Frame {
	w := base.Width()
	if top != nil {
		w = math.Max(w, top.Width())
	}
	if bottom != nil {
		w = math.Max(w, bottom.Width())
	}
	y := 0.0
	out := &Frame{}
	if top != nil {
		out.PushGroup(Pt((w-top.Width())/2, 0), top)
		y = top.Height() + gap
	}
	out.PushFrame(Pt((w-base.Width())/2, y), base)
	out.Baseline = y + base.Baseline
	y += base.Height()
	if bottom != nil {
		y += gap
		out.PushGroup(Pt((w-bottom.Width())/2, y), bottom)
		y += bottom.Height()
	}
	out.Size = Size{W: w, H: y}
	return out
}

func (ctx *mathContext) root(r *content.Root, st state) fragment {
	size := ctx.size(st)
	thickness := ruleThickness * size
	gap := math.Max(thickness, 0.08*size)
	rad := ctx.layout(r.Radicand, st).frame

	sign := ctx.shape(ctx.base, "√", size, r.Span())
	need := rad.Height() + gap + thickness
	top, bottom, ok := ink(sign)
	if !ok {
		top, bottom = -1, 0
	}
	if h := (bottom - top) * size; h < need {
		sign = ctx.shape(ctx.base, "√", size*need/h, r.Span())
	}
	signW := sign.Width()
	signTop := top * sign.Size
	signBottom := bottom * sign.Size

	var index *Frame
	if r.Index != nil {
		index = ctx.layout(r.Index, state{level: levelScriptScript, variant: st.variant}).frame
	}

	x := 0.0
	if index != nil {
		x = math.Max(0, index.Width()-0.5*signW)
	}
	height := math.Max(signBottom-signTop, thickness+gap+rad.Height())
	dy := 0.0
	indexTop := 0.0
	if index != nil {
		indexTop = 0.6*height - index.Height()
		if indexTop < 0 {
			dy = -indexTop
		}
	}

	fill := ctx.styles.Fill
	out := &Frame{
		Size:     Size{W: x + signW + rad.Width() + fracPadding*size, H: height + dy},
		Baseline: dy + thickness + gap + rad.Baseline,
	}
	if index != nil {
		out.PushGroup(Pt(0, indexTop+dy), index)
	}
	out.Push(Pt(x, dy-signTop), sign)
	out.Push(Pt(x+signW, dy), &Shape{
		Geometry: RectGeom{Size: Size{W: rad.Width() + fracPadding*size, H: thickness}},
		Fill:     &fill,
		Span:     r.Span(),
	})
	out.PushFrame(Pt(x+signW, dy+thickness+gap), rad)
	return fragment{frame: out, class: classOrd}
}

// delimited surrounds body with delimiters stretched to cover it. Empty
// delimiter text is omitted.
func (ctx *mathContext) delimited(open, close string, openSpan, closeSpan syntax.Span, body fragment, st state) fragment {
	axis := ctx.axis(st)
	b := body.frame
	target := 2 * math.Max(b.Ascent()-axis, b.Descent()+axis) * delimFactor

	frags := make([]fragment, 0, 3)
	if open != "" {
		frags = append(frags, ctx.delimiter(open, openSpan, target, st))
	}
	frags = append(frags, body)
	if close != "" {
		frags = append(frags, ctx.delimiter(close, closeSpan, target, st))
	}
	return fragment{frame: hstack(frags, nil), class: classInner}
}

func (ctx *mathContext) delimiter(text string, span syntax.Span, target float64, st state) fragment {
	size := ctx.size(st)
	item := ctx.shape(ctx.base, text, size, span)
	shift := 0.0
	if top, bottom, ok := ink(item); ok && (bottom-top)*size < target {
		item = ctx.shape(ctx.base, text, target/(bottom-top), span)
		shift = ctx.centered(item, st)
	}
	return fragment{frame: textFrame(item, shift), class: classify(text, false)}
}

func (ctx *mathContext) vec(v *content.Vec, st state) fragment {
	size := ctx.size(st)
	gap := 0.25 * size
	rows := make([]*Frame, 0, len(v.Children))
	w, h := 0.0, 0.0
	for i, c := range v.Children {
		f := ctx.layout(c, st.frac()).frame
		rows = append(rows, f)
		w = math.Max(w, f.Width())
		if i > 0 {
			h += gap
		}
		h += f.Height()
	}
	col := &Frame{Size: Size{W: w, H: h}, Baseline: h/2 + ctx.axis(st)}
	y := 0.0
	for _, f := range rows {
		col.PushFrame(Pt((w-f.Width())/2, y), f)
		y += f.Height() + gap
	}

	open, close := "(", ")"
	if v.Open != nil {
		open = v.Open.Text
	}
	if v.Close != nil {
		close = v.Close.Text
	}
	return ctx.delimited(open, close, v.Span(), v.Span(), fragment{frame: col}, st)
}

func (ctx *mathContext) line(l *content.Line, st state) fragment {
	size := ctx.size(st)
	thickness := ruleThickness * size
	gap := 3 * thickness
	child := ctx.layout(l.Child, st)
	c := child.frame

	fill := ctx.styles.Fill
	bar := &Shape{
		Geometry: RectGeom{Size: Size{W: c.Width(), H: thickness}},
		Fill:     &fill,
		Span:     l.Span(),
	}
	out := &Frame{Size: Size{W: c.Width(), H: c.Height() + gap + thickness}}
	if l.Over {
		out.Push(Pt(0, 0), bar)
		out.PushFrame(Pt(0, thickness+gap), c)
		out.Baseline = thickness + gap + c.Baseline
	} else {
		out.PushFrame(Pt(0, 0), c)
		out.Push(Pt(0, c.Height()+gap), bar)
		out.Baseline = c.Baseline
	}
	return fragment{frame: out, class: child.class}
}

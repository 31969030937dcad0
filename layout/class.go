package layout

import (
	"strings"
	"unicode/utf8"
)

// class is the TeX atom class of a math fragment. It decides the spacing
// between neighbours.
type class int

const (
	classOrd class = iota
	classOp
	classBin
	classRel
	classOpen
	classClose
	classPunct
	classInner
)

const (
	binaries  = "+-−±∓×·÷∗∘∪∩∧∨⊕⊗⋅"
	relations = "=<>≤≥≠≈≡∼≃→←↔⇒⇐⇔↦∈∉⊂⊃⊆⊇∝:≔"
	openers   = "([{⟨⌊⌈"
	closers   = ")]}⟩⌋⌉"
	largeOps  = "∑∏∐∫∬∭∮⋃⋂⨁⨂"
)

// classify returns the class of a text atom.
func classify(text string, op bool) class {
	if op {
		return classOp
	}
	if utf8.RuneCountInString(text) != 1 {
		return classOrd
	}
	switch {
	case strings.Contains(binaries, text):
		return classBin
	case strings.Contains(relations, text):
		return classRel
	case strings.Contains(openers, text):
		return classOpen
	case strings.Contains(closers, text):
		return classClose
	case text == "," || text == ";":
		return classPunct
	case strings.Contains(largeOps, text):
		return classOp
	}
	return classOrd
}

// hasLimits reports whether attachments of an operator go above and below it
// in display style.
func hasLimits(text string) bool {
	switch text {
	case "∑", "∏", "∐", "⋃", "⋂", "⨁", "⨂",
		"lim", "max", "min", "sup", "inf", "det", "gcd", "lcm":
		return true
	}
	return false
}

// Spacing amounts in mu (1/18 em).
const (
	thin   = 3
	medium = 4
	thick  = 5
)

// spacingTable[left][right] is the space between two atoms. Negative values
// are only applied outside script styles.
var spacingTable = [8][8]int{
	classOrd:   {0, thin, -medium, -thick, 0, 0, 0, -thin},
	classOp:    {thin, thin, 0, -thick, 0, 0, 0, -thin},
	classBin:   {-medium, -medium, 0, 0, -medium, 0, 0, -medium},
	classRel:   {-thick, -thick, 0, 0, -thick, 0, 0, -thick},
	classOpen:  {0, 0, 0, 0, 0, 0, 0, 0},
	classClose: {0, thin, -medium, -thick, 0, 0, 0, -thin},
	classPunct: {-thin, -thin, 0, -thin, -thin, -thin, -thin, -thin},
	classInner: {-thin, thin, -medium, -thick, -thin, 0, -thin, -thin},
}

// spacing returns the space in em between left and right.
func spacing(left, right class, script bool) float64 {
	mu := spacingTable[left][right]
	if mu < 0 {
		if script {
			return 0
		}
		mu = -mu
	}
	return float64(mu) / 18
}

// reclassify demotes binary operators without two operands to ordinary atoms.
func reclassify(classes []class) {
	for i, c := range classes {
		if c != classBin {
			continue
		}
		if i == 0 || i == len(classes)-1 {
			classes[i] = classOrd
			continue
		}
		switch classes[i-1] {
		case classBin, classOp, classRel, classOpen, classPunct:
			classes[i] = classOrd
			continue
		}
		switch classes[i+1] {
		case classRel, classClose, classPunct:
			classes[i] = classOrd
		}
	}
}

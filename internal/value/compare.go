package value

import (
	"fmt"
	"strings"
)

func typeMismatch(format string, args ...any) error {
	return Error{Kind: "TypeMismatch", Message: fmt.Sprintf(format, args...)}
}

func isNumeric(k Kind) bool { return k == Int || k == Float }

// asFloat promotes an Int or Float value to float64, per spec.md §4.2's
// "promote to the widest type (int→float)".
func asFloat(v Value) float64 {
	if v.Kind == Int {
		return float64(v.I)
	}
	return v.F
}

// Equal implements Guard's `==` semantics: numeric promotion between Int
// and Float, exact equality within every other single kind, and the
// preserved cross-kind behavior from spec.md §9 — comparing values of two
// different, non-numeric kinds is not an error, it is simply `false`.
func Equal(a, b Value) (bool, error) {
	if b.Kind == Regex {
		return matchRegex(a, b)
	}

	if isNumeric(a.Kind) && isNumeric(b.Kind) {
		return asFloat(a) == asFloat(b), nil
	}

	if a.Kind != b.Kind {
		return false, nil
	}

	switch a.Kind {
	case Null:
		return true, nil
	case Bool:
		return a.B == b.B, nil
	case Char:
		return a.Ch == b.Ch, nil
	case String:
		return a.S == b.S, nil
	case Regex:
		return a.S == b.S, nil
	case List:
		return equalList(a, b)
	case Map:
		return equalMap(a, b)
	default:
		return false, typeMismatch("values of kind %s are not comparable with ==", a.Kind)
	}
}

func equalList(a, b Value) (bool, error) {
	if len(a.Items) != len(b.Items) {
		return false, nil
	}
	for i := range a.Items {
		eq, err := Equal(a.Items[i], b.Items[i])
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

func equalMap(a, b Value) (bool, error) {
	if a.Obj.Len() != b.Obj.Len() {
		return false, nil
	}
	for _, k := range a.Obj.Keys() {
		av, _ := a.Obj.Get(k)
		bv, ok := b.Obj.Get(k)
		if !ok {
			return false, nil
		}
		eq, err := Equal(av, bv)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// NotEqual implements `!=`. Per spec.md §9 this is the logical negation of
// Equal for same-kind/numeric comparisons, but for genuinely incompatible
// non-numeric kinds it is preserved as `true` rather than an error — the
// defined dual of Equal's "false" — for compatibility with the host
// language's partial-equality contract this system re-architects from.
func NotEqual(a, b Value) (bool, error) {
	eq, err := Equal(a, b)
	if err != nil {
		return false, err
	}
	return !eq, nil
}

// Compare returns -1, 0, or 1 for ordered comparisons (<, <=, >, >=).
// Ordered comparison is defined only for two numeric values, two Char
// values, or two String values (lexicographic byte order); anything else
// is an incompatible-type error per spec.md §4.4.
func Compare(a, b Value) (int, error) {
	if isNumeric(a.Kind) && isNumeric(b.Kind) {
		fa, fb := asFloat(a), asFloat(b)
		switch {
		case fa < fb:
			return -1, nil
		case fa > fb:
			return 1, nil
		default:
			return 0, nil
		}
	}

	if a.Kind == Char && b.Kind == Char {
		switch {
		case a.Ch < b.Ch:
			return -1, nil
		case a.Ch > b.Ch:
			return 1, nil
		default:
			return 0, nil
		}
	}

	if a.Kind == String && b.Kind == String {
		return strings.Compare(a.S, b.S), nil
	}

	return 0, Error{
		Kind:    "IncompatibleTypes",
		Message: fmt.Sprintf("cannot order-compare %s and %s", a.Kind, b.Kind),
	}
}

// InRange reports whether v falls within r, honoring each bound's
// inclusivity. Defined only for numeric and character kinds (spec.md
// §4.2).
func InRange(v Value, r RangeVal) (bool, error) {
	if !((isNumeric(v.Kind) && isNumeric(r.Lo.Kind)) || (v.Kind == Char && r.Lo.Kind == Char)) {
		return false, Error{
			Kind:    "IncompatibleTypes",
			Message: fmt.Sprintf("range membership is undefined for kind %s", v.Kind),
		}
	}

	loCmp, err := Compare(v, r.Lo)
	if err != nil {
		return false, err
	}
	hiCmp, err := Compare(v, r.Hi)
	if err != nil {
		return false, err
	}

	loOK := loCmp > 0 || (loCmp == 0 && r.LoInclusive)
	hiOK := hiCmp < 0 || (hiCmp == 0 && r.HiInclusive)
	return loOK && hiOK, nil
}

// matchRegex implements the `==`/`!=` "right-hand side is a regex" case
// from spec.md §4.2: the left value must be a string, and the match is
// "contains" semantics (the caller may anchor within the pattern itself).
func matchRegex(left, pattern Value) (bool, error) {
	if left.Kind != String {
		return false, Error{
			Kind:    "TypeMismatch",
			Message: fmt.Sprintf("regex match requires a string left-hand value, got %s", left.Kind),
		}
	}
	re, err := pattern.Compiled()
	if err != nil {
		return false, err
	}
	return re.MatchString(left.S), nil
}

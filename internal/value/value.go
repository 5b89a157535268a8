// Package value implements Guard's typed value model: the tagged-union
// representation of a decoded JSON/YAML document (or a literal appearing in
// rule source) plus the source-location metadata attached to every node.
package value

import (
	"encoding/json"
	"fmt"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	Char
	Regex
	String
	RangeKind
	List
	Map
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Char:
		return "char"
	case Regex:
		return "regex"
	case String:
		return "string"
	case RangeKind:
		return "range"
	case List:
		return "list"
	case Map:
		return "struct"
	default:
		return "unknown"
	}
}

// Path is the root-anchored, JSON-Pointer-like location of a Value within
// the document it was decoded from, plus an optional source (line, column)
// when the decoder could recover one.
type Path struct {
	Pointer string
	Line    int
	Column  int
}

// HasPosition reports whether Line/Column were recovered from the source.
func (p Path) HasPosition() bool {
	return p.Line > 0
}

func (p Path) String() string {
	pointer := p.Pointer
	if pointer == "" {
		pointer = "/"
	}
	if p.HasPosition() {
		return fmt.Sprintf("%s (line %d, col %d)", pointer, p.Line, p.Column)
	}
	return pointer
}

// Key returns the path of a map-valued child at key k.
func (p Path) Key(k string) Path {
	return Path{Pointer: p.Pointer + "/" + k}
}

// Index returns the path of a list-valued child at index i.
func (p Path) Index(i int) Path {
	return Path{Pointer: fmt.Sprintf("%s/%d", p.Pointer, i)}
}

// Value is a tagged union over every Guard data kind. Only the field(s)
// matching Kind are meaningful; zero Values of the other fields are never
// interpreted.
type Value struct {
	Kind Kind
	Path Path

	B  bool
	I  int64
	F  float64
	Ch rune
	S  string

	Rng   *RangeVal
	Items []Value
	Obj   *OrderedMap
}

// Error implements the teacher's XError{Kind, Message} shape, reused by
// every package in this module for structured, typed errors.
type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("value error (%v): %v", e.Kind, e.Message)
}

// Null-kind helpers.

func NewNull(p Path) Value { return Value{Kind: Null, Path: p} }

func NewBool(b bool, p Path) Value { return Value{Kind: Bool, B: b, Path: p} }

func NewInt(i int64, p Path) Value { return Value{Kind: Int, I: i, Path: p} }

func NewFloat(f float64, p Path) Value { return Value{Kind: Float, F: f, Path: p} }

func NewChar(c rune, p Path) Value { return Value{Kind: Char, Ch: c, Path: p} }

func NewString(s string, p Path) Value { return Value{Kind: String, S: s, Path: p} }

func NewRegex(pattern string, p Path) Value { return Value{Kind: Regex, S: pattern, Path: p} }

func NewList(items []Value, p Path) Value { return Value{Kind: List, Items: items, Path: p} }

func NewMap(obj *OrderedMap, p Path) Value { return Value{Kind: Map, Obj: obj, Path: p} }

func NewRange(r RangeVal, p Path) Value { return Value{Kind: RangeKind, Rng: &r, Path: p} }

// IsString/IsList/IsStruct/IsInt/IsFloat/IsBool implement the language's
// is_<kind> unary clause tests (spec.md §4.2: "Kind tests consult only the
// tag").
func (v Value) IsString() bool { return v.Kind == String }
func (v Value) IsList() bool   { return v.Kind == List }
func (v Value) IsStruct() bool { return v.Kind == Map }
func (v Value) IsInt() bool    { return v.Kind == Int }
func (v Value) IsFloat() bool  { return v.Kind == Float }
func (v Value) IsBool() bool   { return v.Kind == Bool }

// IsEmpty reports whether v is an empty list, an empty map, an empty
// string, or null. Every other scalar is never "empty"; the `empty` clause
// additionally treats a missing value (a retrieval error) as empty, which
// is handled at the clause layer, not here.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case List:
		return len(v.Items) == 0
	case Map:
		return v.Obj == nil || v.Obj.Len() == 0
	case String:
		return v.S == ""
	case Null:
		return true
	default:
		return false
	}
}

// MarshalJSON renders v as its String() form. Full structured
// serialization of the value tree is a formatter concern, out of this
// package's scope (spec.md §6); report-tree JSON output just needs a
// readable operand sample.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "null"
	case Bool:
		if v.B {
			return "true"
		}
		return "false"
	case Int:
		return fmt.Sprintf("%d", v.I)
	case Float:
		return fmt.Sprintf("%g", v.F)
	case Char:
		return fmt.Sprintf("%c", v.Ch)
	case Regex:
		return "/" + v.S + "/"
	case String:
		return v.S
	case RangeKind:
		return v.Rng.String()
	case List:
		return fmt.Sprintf("<list len=%d>", len(v.Items))
	case Map:
		n := 0
		if v.Obj != nil {
			n = v.Obj.Len()
		}
		return fmt.Sprintf("<struct keys=%d>", n)
	default:
		return "<unknown>"
	}
}

// RangeVal is the payload of a RangeKind Value: r[lo,hi], r[lo,hi),
// r(lo,hi], r(lo,hi) over integer, float, or character bounds.
type RangeVal struct {
	Lo, Hi                 Value
	LoInclusive, HiInclusive bool
}

func (r RangeVal) String() string {
	lo, hi := "(", ")"
	if r.LoInclusive {
		lo = "["
	}
	if r.HiInclusive {
		hi = "]"
	}
	return fmt.Sprintf("r%s%s,%s%s", lo, r.Lo.String(), r.Hi.String(), hi)
}

// OrderedMap is an insertion-ordered string-keyed map, matching spec.md
// §3.1's "ordered mapping from string keys to Value with insertion order
// preserved".
type OrderedMap struct {
	keys []string
	vals map[string]Value
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{vals: make(map[string]Value)}
}

func (m *OrderedMap) Set(key string, v Value) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *OrderedMap) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *OrderedMap) Keys() []string {
	return m.keys
}

func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Values returns the map's values in insertion order.
func (m *OrderedMap) Values() []Value {
	out := make([]Value, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.vals[k]
	}
	return out
}

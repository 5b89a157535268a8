package builtins

import (
	"testing"

	"github.com/ritamzico/guard/internal/query"
	"github.com/ritamzico/guard/internal/value"
)

func strSeq(ss ...string) query.Sequence {
	seq := make(query.Sequence, len(ss))
	for i, s := range ss {
		seq[i] = query.Located{Value: value.NewString(s, value.Path{})}
	}
	return seq
}

func litSeq(v value.Value) query.Sequence {
	return query.Sequence{{Value: v}}
}

// TestRegexReplaceArnRewrite is scenario 6 (spec.md §8).
func TestRegexReplaceArnRewrite(t *testing.T) {
	args := []query.Sequence{
		strSeq("arn:aws:newservice:us-west-2:123456789012:Table/extracted"),
		litSeq(value.NewString(`^arn:(\w+):(\w+):([\w0-9-]+):(\d+):(.+)$`, value.Path{})),
		litSeq(value.NewString("${1}/${4}/${3}/${2}-${5}", value.Path{})),
	}
	out, err := regexReplaceFn{}.Call(args)
	if err != nil {
		t.Fatalf("regex_replace returned error: %v", err)
	}
	want := "aws/123456789012/us-west-2/newservice-Table/extracted"
	if len(out) != 1 || out[0].Value.S != want {
		t.Fatalf("regex_replace = %+v, want %q", out, want)
	}
}

// TestCountResolvedValues is scenario 5 (spec.md §8): count(...) over
// zero, one, and two matched elements.
func TestCountResolvedValues(t *testing.T) {
	tests := []struct {
		n    int
		want int64
	}{
		{0, 0},
		{1, 1},
		{2, 2},
	}
	for _, tt := range tests {
		seq := make(query.Sequence, tt.n)
		for i := range seq {
			seq[i] = query.Located{Value: value.NewInt(int64(i), value.Path{})}
		}
		out, err := countFn{}.Call([]query.Sequence{seq})
		if err != nil {
			t.Fatalf("count returned error: %v", err)
		}
		if len(out) != 1 || out[0].Value.I != tt.want {
			t.Fatalf("count(%d elements) = %+v, want %d", tt.n, out, tt.want)
		}
	}
}

func TestCountIgnoresRetrievalErrors(t *testing.T) {
	seq := query.Sequence{
		{Value: value.NewInt(1, value.Path{})},
		{Err: query.RetrievalError{Kind: "MissingKey", Message: "missing"}},
	}
	out, err := countFn{}.Call([]query.Sequence{seq})
	if err != nil {
		t.Fatalf("count returned error: %v", err)
	}
	if out[0].Value.I != 1 {
		t.Fatalf("count should only tally successfully resolved values, got %d", out[0].Value.I)
	}
}

func TestJoin(t *testing.T) {
	args := []query.Sequence{strSeq("a", "b", "c"), litSeq(value.NewString(",", value.Path{}))}
	out, err := joinFn{}.Call(args)
	if err != nil {
		t.Fatalf("join returned error: %v", err)
	}
	if out[0].Value.S != "a,b,c" {
		t.Fatalf("join = %q, want \"a,b,c\"", out[0].Value.S)
	}
}

func TestToUpperSkipsNonStrings(t *testing.T) {
	seq := query.Sequence{
		{Value: value.NewString("hi", value.Path{})},
		{Value: value.NewInt(5, value.Path{})},
	}
	out, err := caseFn{upper: true}.Call([]query.Sequence{seq})
	if err != nil {
		t.Fatalf("to_upper returned error: %v", err)
	}
	if len(out) != 1 || out[0].Value.S != "HI" {
		t.Fatalf("to_upper = %+v, want only [\"HI\"]", out)
	}
}

func TestSubstringSkipsOutOfBounds(t *testing.T) {
	args := []query.Sequence{
		strSeq("hello"),
		litSeq(value.NewInt(0, value.Path{})),
		litSeq(value.NewInt(100, value.Path{})),
	}
	out, err := substringFn{}.Call(args)
	if err != nil {
		t.Fatalf("substring returned error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("substring with an out-of-bounds end should skip the element, got %+v", out)
	}
}

func TestUrlDecode(t *testing.T) {
	args := []query.Sequence{strSeq("a%20b%2Fc")}
	out, err := urlDecodeFn{}.Call(args)
	if err != nil {
		t.Fatalf("url_decode returned error: %v", err)
	}
	if out[0].Value.S != "a b/c" {
		t.Fatalf("url_decode = %q, want \"a b/c\"", out[0].Value.S)
	}
}

func TestJsonParse(t *testing.T) {
	args := []query.Sequence{strSeq(`{"a": 1}`)}
	out, err := jsonParseFn{}.Call(args)
	if err != nil {
		t.Fatalf("json_parse returned error: %v", err)
	}
	if len(out) != 1 || out[0].Value.Kind != value.Map {
		t.Fatalf("json_parse = %+v, want a single struct value", out)
	}
	a, ok := out[0].Value.Obj.Get("a")
	if !ok || a.I != 1 {
		t.Fatalf("json_parse result missing key \"a\" = 1, got %+v", out[0].Value)
	}
}

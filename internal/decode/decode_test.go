package decode

import (
	"testing"

	"github.com/ritamzico/guard/internal/value"
)

func TestParseJSONPreservesKeyOrderAndPositions(t *testing.T) {
	input := []byte(`{"apiVersion":"v1","kind":"Pod","spec":{"containers":[{"name":"a"},{"name":"b"}]}}`)

	v, err := Parse(input, JSON)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v.Kind != value.Map {
		t.Fatalf("expected root to be a struct, got %s", v.Kind)
	}

	want := []string{"apiVersion", "kind", "spec"}
	got := v.Obj.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	spec, ok := v.Obj.Get("spec")
	if !ok {
		t.Fatal("missing spec key")
	}
	containers, ok := spec.Obj.Get("containers")
	if !ok || containers.Kind != value.List || len(containers.Items) != 2 {
		t.Fatalf("expected spec.containers to be a 2-element list, got %+v", containers)
	}
	if containers.Items[1].Path.Pointer != "/spec/containers/1" {
		t.Errorf("unexpected path for containers[1]: %q", containers.Items[1].Path.Pointer)
	}
}

func TestParseYAMLScalarKinds(t *testing.T) {
	input := []byte("count: 3\nratio: 1.5\nactive: true\nname: hello\nnothing: null\n")

	v, err := Parse(input, YAML)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cases := []struct {
		key  string
		kind value.Kind
	}{
		{"count", value.Int},
		{"ratio", value.Float},
		{"active", value.Bool},
		{"name", value.String},
		{"nothing", value.Null},
	}

	for _, c := range cases {
		got, ok := v.Obj.Get(c.key)
		if !ok {
			t.Fatalf("missing key %q", c.key)
		}
		if got.Kind != c.kind {
			t.Errorf("key %q: got kind %s, want %s", c.key, got.Kind, c.kind)
		}
	}
}

func TestParseRejectsShortFormIntrinsicTag(t *testing.T) {
	input := []byte("Value: !GetAtt MyResource.Arn\n")

	_, err := Parse(input, YAML)
	if err == nil {
		t.Fatal("expected an UnsupportedTagError for a short-form intrinsic tag")
	}
	if _, ok := err.(UnsupportedTagError); !ok {
		t.Errorf("expected UnsupportedTagError, got %T: %v", err, err)
	}
}

func TestParseAllowsLongFormIntrinsicAsPlainMap(t *testing.T) {
	input := []byte(`{"Value":{"Fn::GetAtt":["MyResource","Arn"]}}`)

	v, err := Parse(input, JSON)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	val, ok := v.Obj.Get("Value")
	if !ok || val.Kind != value.Map {
		t.Fatalf("expected Value to decode as a struct, got %+v", val)
	}
	if _, ok := val.Obj.Get("Fn::GetAtt"); !ok {
		t.Error("expected Fn::GetAtt key to survive decoding")
	}
}

func TestMergeInputParameters(t *testing.T) {
	base, err := Parse([]byte(`{"apiVersion":"v1"}`), JSON)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	patch, err := Parse([]byte(`{"TcpBlockedPorts":[21,22,90,110]}`), JSON)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	merged, err := Merge(base, "InputParameters", patch)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if _, ok := merged.Obj.Get("apiVersion"); !ok {
		t.Error("merged document should retain original keys")
	}
	ip, ok := merged.Obj.Get("InputParameters")
	if !ok {
		t.Fatal("merged document should have an InputParameters key")
	}
	if ip.Kind != value.Map {
		t.Fatalf("expected InputParameters to be a struct, got %s", ip.Kind)
	}
}

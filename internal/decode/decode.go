// Package decode implements the external parse_data contract (spec.md
// §6): turning raw JSON or YAML document bytes into a value.Value tree
// that carries a Path (and, where the source offers one, a line/column)
// on every node.
package decode

import (
	"fmt"
	"strconv"

	"github.com/ritamzico/guard/internal/value"
	"gopkg.in/yaml.v3"
)

// Format names the input document's encoding. JSON is valid YAML flow
// syntax, so both formats share a single decode path through yaml.v3's
// Node tree; Format only affects the error Kind (InvalidJSON or
// InvalidYAML) reported when decoding fails.
type Format int

const (
	YAML Format = iota
	JSON
)

// Error mirrors the teacher's XError{Kind, Message} shape.
type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("decode error (%v): %v", e.Kind, e.Message)
}

// UnsupportedTagError reports a short-form CloudFormation-style intrinsic
// tag (e.g. !GetAtt, !Ref) that spec.md §6 says the decoder must reject
// rather than silently pass through or misinterpret. The long-form
// representation (a map with a single "Fn::GetAtt" key) is an ordinary
// value.Map and never reaches this path.
type UnsupportedTagError struct {
	Tag  string
	Path value.Path
}

func (e UnsupportedTagError) Error() string {
	return fmt.Sprintf("decode error (UnsupportedTag): short-form intrinsic tag %q at %s is not supported; use the long-form Fn:: map representation", e.Tag, e.Path)
}

// Parse decodes data (JSON or YAML bytes) into a value.Value tree rooted
// at path "" (the document root).
func Parse(data []byte, format Format) (value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		kind := "InvalidYAML"
		if format == JSON {
			kind = "InvalidJSON"
		}
		return value.Value{}, Error{Kind: kind, Message: err.Error()}
	}

	if doc.Kind == 0 {
		// Empty input decodes to an empty document.
		return value.NewNull(value.Path{}), nil
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return value.NewNull(value.Path{}), nil
		}
		root = root.Content[0]
	}

	return fromNode(root, value.Path{})
}

func fromNode(n *yaml.Node, path value.Path) (value.Value, error) {
	path.Line = n.Line
	path.Column = n.Column

	if len(n.Tag) > 1 && n.Tag[1] != '!' {
		// A resolved scalar/collection tag is always "!!kind"; anything
		// else is a custom short-form tag such as !GetAtt or !Ref.
		return value.Value{}, UnsupportedTagError{Tag: n.Tag, Path: path}
	}

	switch n.Kind {
	case yaml.ScalarNode:
		return scalarFromNode(n, path)
	case yaml.SequenceNode:
		return listFromNode(n, path)
	case yaml.MappingNode:
		return mapFromNode(n, path)
	case yaml.AliasNode:
		return fromNode(n.Alias, path)
	default:
		return value.Value{}, Error{Kind: "UnsupportedNode", Message: fmt.Sprintf("unsupported node kind %v at %s", n.Kind, path)}
	}
}

func scalarFromNode(n *yaml.Node, path value.Path) (value.Value, error) {
	switch n.Tag {
	case "!!null":
		return value.NewNull(path), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return value.Value{}, Error{Kind: "InvalidBool", Message: fmt.Sprintf("%q at %s: %v", n.Value, path, err)}
		}
		return value.NewBool(b, path), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return value.Value{}, Error{Kind: "InvalidInt", Message: fmt.Sprintf("%q at %s: %v", n.Value, path, err)}
		}
		return value.NewInt(i, path), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return value.Value{}, Error{Kind: "InvalidFloat", Message: fmt.Sprintf("%q at %s: %v", n.Value, path, err)}
		}
		return value.NewFloat(f, path), nil
	default:
		return value.NewString(n.Value, path), nil
	}
}

func listFromNode(n *yaml.Node, path value.Path) (value.Value, error) {
	items := make([]value.Value, len(n.Content))
	for i, child := range n.Content {
		v, err := fromNode(child, path.Index(i))
		if err != nil {
			return value.Value{}, err
		}
		items[i] = v
	}
	return value.NewList(items, path), nil
}

func mapFromNode(n *yaml.Node, path value.Path) (value.Value, error) {
	obj := value.NewOrderedMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return value.Value{}, Error{Kind: "UnsupportedKey", Message: fmt.Sprintf("non-scalar map key at %s", path)}
		}
		v, err := fromNode(valNode, path.Key(keyNode.Value))
		if err != nil {
			return value.Value{}, err
		}
		obj.Set(keyNode.Value, v)
	}
	return value.NewMap(obj, path), nil
}

// Merge shallow-merges patch onto base's top-level map under the given
// key, implementing EvalOptions.InputParameters (spec.md §6, SPEC_FULL.md
// §5): the result is a copy of the decoded document's root map with key
// set to patch, without mutating base in place (spec.md's "no mutation
// of input data" non-goal applies to rule evaluation, not to assembling
// the initial document).
func Merge(base value.Value, key string, patch value.Value) (value.Value, error) {
	if base.Kind != value.Map {
		return value.Value{}, Error{Kind: "TypeMismatch", Message: "Merge requires a struct-kind base document"}
	}

	merged := value.NewOrderedMap()
	for _, k := range base.Obj.Keys() {
		v, _ := base.Obj.Get(k)
		merged.Set(k, v)
	}
	merged.Set(key, patch)

	return value.NewMap(merged, base.Path), nil
}

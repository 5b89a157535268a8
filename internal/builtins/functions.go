package builtins

import (
	"net/url"
	"strings"

	"github.com/ritamzico/guard/internal/decode"
	"github.com/ritamzico/guard/internal/query"
	"github.com/ritamzico/guard/internal/value"
)

// jsonParseFn implements json_parse(q): parse each resolved string as
// JSON (spec.md §4.7).
type jsonParseFn struct{}

func (jsonParseFn) Call(args []query.Sequence) (query.Sequence, error) {
	if err := requireArgs("json_parse", args, 1); err != nil {
		return nil, err
	}
	var out query.Sequence
	for _, v := range args[0].Values() {
		if v.Kind != value.String {
			continue
		}
		parsed, err := decode.Parse([]byte(v.S), decode.JSON)
		if err != nil {
			continue
		}
		out = append(out, query.Located{Value: parsed})
	}
	return out, nil
}

// regexReplaceFn implements regex_replace(q, pattern, replacement),
// substituting `${n}`/`$n` capture-group references via Go's native
// regexp.ReplaceAllString (spec.md §4.7, scenario 6).
type regexReplaceFn struct{}

func (regexReplaceFn) Call(args []query.Sequence) (query.Sequence, error) {
	if err := requireArgs("regex_replace", args, 3); err != nil {
		return nil, err
	}
	pattern, ok := singleStringArg(args, 1)
	if !ok {
		return nil, Error{Kind: "InvalidArgument", Message: "regex_replace's pattern argument must be a single string literal"}
	}
	replacement, ok := singleStringArg(args, 2)
	if !ok {
		return nil, Error{Kind: "InvalidArgument", Message: "regex_replace's replacement argument must be a single string literal"}
	}

	re, err := value.NewRegex(pattern, value.Path{}).Compiled()
	if err != nil {
		return nil, err
	}

	var out query.Sequence
	for _, v := range args[0].Values() {
		if v.Kind != value.String {
			continue
		}
		replaced := re.ReplaceAllString(v.S, replacement)
		out = append(out, query.Located{Value: value.NewString(replaced, v.Path)})
	}
	return out, nil
}

// joinFn implements join(q, delimiter): concatenate string-valued
// members of q with delimiter (spec.md §4.7).
type joinFn struct{}

func (joinFn) Call(args []query.Sequence) (query.Sequence, error) {
	if err := requireArgs("join", args, 2); err != nil {
		return nil, err
	}
	delim, ok := singleStringArg(args, 1)
	if !ok {
		return nil, Error{Kind: "InvalidArgument", Message: "join's delimiter argument must be a single string literal"}
	}

	var parts []string
	for _, v := range args[0].Values() {
		if v.Kind != value.String {
			continue
		}
		parts = append(parts, v.S)
	}
	return query.Sequence{{Value: value.NewString(strings.Join(parts, delim), value.Path{})}}, nil
}

// caseFn implements to_lower(q)/to_upper(q) (spec.md §4.7).
type caseFn struct{ upper bool }

func (f caseFn) Call(args []query.Sequence) (query.Sequence, error) {
	name := "to_lower"
	if f.upper {
		name = "to_upper"
	}
	if err := requireArgs(name, args, 1); err != nil {
		return nil, err
	}
	var out query.Sequence
	for _, v := range args[0].Values() {
		if v.Kind != value.String {
			continue
		}
		s := v.S
		if f.upper {
			s = strings.ToUpper(s)
		} else {
			s = strings.ToLower(s)
		}
		out = append(out, query.Located{Value: value.NewString(s, v.Path)})
	}
	return out, nil
}

// substringFn implements substring(q, start, end): zero-based,
// end-exclusive; elements whose bounds fall out of range are skipped
// (spec.md §4.7).
type substringFn struct{}

func (substringFn) Call(args []query.Sequence) (query.Sequence, error) {
	if err := requireArgs("substring", args, 3); err != nil {
		return nil, err
	}
	start, ok := singleIntArg(args, 1)
	if !ok {
		return nil, Error{Kind: "InvalidArgument", Message: "substring's start argument must be a single int literal"}
	}
	end, ok := singleIntArg(args, 2)
	if !ok {
		return nil, Error{Kind: "InvalidArgument", Message: "substring's end argument must be a single int literal"}
	}

	var out query.Sequence
	for _, v := range args[0].Values() {
		if v.Kind != value.String {
			continue
		}
		if start < 0 || end > len(v.S) || start > end {
			continue
		}
		out = append(out, query.Located{Value: value.NewString(v.S[start:end], v.Path)})
	}
	return out, nil
}

// urlDecodeFn implements url_decode(q): percent-decoding (spec.md §4.7).
type urlDecodeFn struct{}

func (urlDecodeFn) Call(args []query.Sequence) (query.Sequence, error) {
	if err := requireArgs("url_decode", args, 1); err != nil {
		return nil, err
	}
	var out query.Sequence
	for _, v := range args[0].Values() {
		if v.Kind != value.String {
			continue
		}
		decoded, err := url.QueryUnescape(v.S)
		if err != nil {
			continue
		}
		out = append(out, query.Located{Value: value.NewString(decoded, v.Path)})
	}
	return out, nil
}

// countFn implements count(q): the integer count of resolved values
// (spec.md §4.7, scenario 5).
type countFn struct{}

func (countFn) Call(args []query.Sequence) (query.Sequence, error) {
	if err := requireArgs("count", args, 1); err != nil {
		return nil, err
	}
	n := len(args[0].Values())
	return query.Sequence{{Value: value.NewInt(int64(n), value.Path{})}}, nil
}

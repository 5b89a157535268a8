package query

import (
	"fmt"

	"github.com/ritamzico/guard/internal/value"
)

// RetrievalError mirrors the teacher's XError{Kind, Message} shape
// (spec.md §7: "Retrieval error: missing key, index out of range, type
// mismatch during traversal"). It is attached to a Located rather than
// returned as a bare Go error whenever the failure is local to one
// lineage of a query's results. Path is the document location the
// traversal was standing on when it failed (spec.md §4.8: "the path(s)
// in the input document it touched"), populated whenever a value with a
// Path was available; it is the zero Path when the error predates any
// document traversal (e.g. a malformed query shape).
type RetrievalError struct {
	Kind    string
	Message string
	Path    value.Path
}

func (e RetrievalError) Error() string {
	return fmt.Sprintf("retrieval error (%v): %v", e.Kind, e.Message)
}

package eval

import "fmt"

// Error mirrors the teacher's XError{Kind, Message} shape.
type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("evaluation error (%v): %v", e.Kind, e.Message)
}

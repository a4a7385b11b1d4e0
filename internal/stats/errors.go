package stats

import (
	"errors"
	"fmt"
)

// ErrUnexpectedFormat indicates tool output that does not follow the
// grammar its parser expects.
var ErrUnexpectedFormat = errors.New("unexpected tool output format")

// FormatError describes where a tool report diverged from the expected grammar.
type FormatError struct {
	Tool   Tool
	Line   int
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s output line %d %q: %s", e.Tool, e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("%s output: %s", e.Tool, e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrUnexpectedFormat
}

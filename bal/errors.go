package bal

import "fmt"

// SyntaxError reports malformed BAL source with the position that broke the
// parse. It is the only error the tokenize/parse entry points return.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
	}
	return "syntax error: " + e.Msg
}

func syntaxErrorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

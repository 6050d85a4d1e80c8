package wavefront

import (
	"errors"
	"fmt"
)

// Parse errors.
var (
	ErrMalformedDirective = errors.New("malformed directive")
	ErrMalformedFace      = errors.New("malformed face")
	ErrNoMaterial         = errors.New("material directive before newmtl")
	ErrNoSubmesh          = errors.New("face before usemtl")
	ErrNameTooLong        = errors.New("name too long")
)

// ParseError locates a parse failure in its source file.
type ParseError struct {
	File      string
	Line      int
	Directive string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s: %d] %s: %v", e.File, e.Line, e.Directive, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(file string, line int, directive string, err error) error {
	return &ParseError{File: file, Line: line, Directive: directive, Err: err}
}

// tokenCount checks that a directive has exactly want tokens (including the
// directive itself).
func tokenCount(tokens []string, want int) error {
	if len(tokens) != want {
		return fmt.Errorf("%w: expected %d argument(s), got %d", ErrMalformedDirective, want-1, len(tokens)-1)
	}
	return nil
}

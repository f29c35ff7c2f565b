package wing

import (
	"fmt"
	"strconv"
)

// Kind classifies the failures of the wing pipeline. Kind values
// implement error so they can be used as targets of errors.Is.
type Kind uint8

const (
	_ Kind = iota
	// ErrParse is a malformed airfoil data line.
	ErrParse
	// ErrEmptyProfile means fewer than 3 points were read.
	ErrEmptyProfile
	// ErrDegenerateChord is a chord length that is not strictly positive.
	ErrDegenerateChord
	// ErrDegenerateMesh is a mismatch between cross-sections or a
	// triangle of zero area.
	ErrDegenerateMesh
	// ErrWrite is a failure of the output destination.
	ErrWrite
	// ErrParameter is an invalid wing parameter.
	ErrParameter
)

func (k Kind) Error() string { return k.String() }

func (k Kind) String() string {
	switch k {
	case ErrParse:
		return "parse error"
	case ErrEmptyProfile:
		return "empty profile"
	case ErrDegenerateChord:
		return "degenerate chord"
	case ErrDegenerateMesh:
		return "degenerate mesh"
	case ErrWrite:
		return "write error"
	case ErrParameter:
		return "invalid parameter"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Error is the error type returned by the wing pipeline and its
// serializers. Only the fields relevant to Kind are set.
type Error struct {
	Kind Kind
	// Line is the 1-based line number of the input for ErrParse.
	Line int
	// Text is the offending input line for ErrParse, or a
	// description of the failed check.
	Text string
	// Value is the offending number for ErrDegenerateChord, ErrParameter
	// and ErrEmptyProfile (point count).
	Value float64
	// Index is the offending triangle index for ErrDegenerateMesh, or -1.
	Index int
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	switch e.Kind {
	case ErrParse:
		msg += fmt.Sprintf(" on line %d %q", e.Line, e.Text)
	case ErrEmptyProfile:
		msg += fmt.Sprintf(": got %g points, need at least 3", e.Value)
	case ErrDegenerateChord:
		msg += fmt.Sprintf(": chord %g must be positive", e.Value)
	case ErrParameter:
		msg += fmt.Sprintf(": %s = %g", e.Text, e.Value)
	default:
		if e.Text != "" {
			msg += ": " + e.Text
		}
		if e.Index >= 0 && e.Kind == ErrDegenerateMesh {
			msg += " (triangle " + strconv.Itoa(e.Index) + ")"
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func parseErr(line int, text string, err error) error {
	return &Error{Kind: ErrParse, Line: line, Text: text, Index: -1, Err: err}
}

func meshErr(index int, text string, err error) error {
	return &Error{Kind: ErrDegenerateMesh, Index: index, Text: text, Err: err}
}

// WriteError wraps an output failure.
func WriteError(err error) error {
	return &Error{Kind: ErrWrite, Index: -1, Err: err}
}

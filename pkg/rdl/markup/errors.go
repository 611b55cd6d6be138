package markup

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument is matched by every error the parser returns.
var ErrMalformedDocument = errors.New("malformed document")

// MalformedDocumentError reports why and where a report definition could not be parsed
type MalformedDocumentError struct {
	Message string
	Offset  int
	Line    int
	Column  int
}

func (e *MalformedDocumentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed document at line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("malformed document at offset %d: %s", e.Offset, e.Message)
}

// Is lets errors.Is(err, ErrMalformedDocument) match any MalformedDocumentError.
func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// newMalformed builds an error for the given byte offset of source.
func newMalformed(source string, offset int, format string, args ...interface{}) error {
	line, column := position(source, offset)
	return &MalformedDocumentError{
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
		Line:    line,
		Column:  column,
	}
}

// position converts a byte offset to a 1-based line and column.
func position(source string, offset int) (int, int) {
	if offset > len(source) {
		offset = len(source)
	}
	line, column := 1, 1
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

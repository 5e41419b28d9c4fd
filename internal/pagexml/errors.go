package pagexml

import (
	"errors"
	"fmt"
)

// ErrUnsupportedVersion is returned when writing a PAGE version this package
// does not know.
var ErrUnsupportedVersion = errors.New("unsupported PAGE version")

// ParseError reports a document that could not be decoded.
type ParseError struct {
	// Doc is the kind of document being read: "page" or "settings".
	Doc string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s document: %v", e.Doc, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

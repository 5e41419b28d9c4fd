package pagexml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/net/html/charset"
)

// Document is an XML document ready to be encoded.
type Document struct {
	// Version is the PAGE version of result documents, empty for settings.
	Version string

	root any
}

// Encode returns the document as indented XML with a declaration.
func Encode(doc *Document) ([]byte, error) {
	if doc == nil || doc.root == nil {
		return nil, errors.New("failed to encode document: empty document")
	}
	body, err := xml.MarshalIndent(doc.root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(body) + 1)
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// SaveDocument writes the document to dir/fileName.xml, creating dir if
// needed, and returns the path written.
func SaveDocument(doc *Document, fileName, dir string) (string, error) {
	data, err := Encode(doc)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, fileName+".xml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return path, nil
}

// errTrailingContent is returned for markup after the root element.
var errTrailingContent = errors.New("unexpected content after the root element")

// decode unmarshals data into v, honoring the encoding named in the XML
// declaration. Only whitespace, comments and processing instructions may
// follow the root element.
func decode(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(v); err != nil {
		return err
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errTrailingContent
			}
		default:
			return errTrailingContent
		}
	}
}

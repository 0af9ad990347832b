package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/quill/pkg/core"
)

// frontmatter is the YAML header of a note file.
type frontmatter struct {
	Title string `yaml:"title"`
	Color string `yaml:"color"`
}

var (
	openLF    = []byte("---\n")
	openCRLF  = []byte("---\r\n")
	closeLF   = []byte("\n---\n")
	closeCRLF = []byte("\r\n---\r\n")
	fence     = []byte("---")
)

// encodeRecord renders a record as Markdown with a YAML frontmatter:
//
//	---
//	title: Groceries
//	color: YELLOW
//	---
//	body...
//
// The body is written verbatim after the closing delimiter.
func encodeRecord(r core.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(openLF)

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(frontmatter{Title: r.Title, Color: r.ColorKey}); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	buf.Write(openLF)
	buf.WriteString(r.Body)
	return buf.Bytes(), nil
}

// decodeRecord parses a note file. A file without frontmatter is all body;
// its title is empty and its colour key unknown (resolved later by the palette).
func decodeRecord(rd io.Reader) (core.Record, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return core.Record{}, err
	}

	var rest, delim, closing []byte
	switch {
	case bytes.HasPrefix(data, openLF):
		rest, delim, closing = data[len(openLF):], openLF, closeLF
	case bytes.HasPrefix(data, openCRLF):
		rest, delim, closing = data[len(openCRLF):], openCRLF, closeCRLF
	default:
		return core.Record{Body: string(data)}, nil
	}

	// A closing fence at end of file (no trailing newline) ends the header
	// and leaves the body empty.
	eofClosing := closing[:len(closing)-len(delim)+len(fence)]

	var header, body []byte
	switch {
	case bytes.HasPrefix(rest, delim):
		// empty frontmatter
		body = rest[len(delim):]
	case bytes.Equal(rest, fence):
	default:
		if idx := bytes.Index(rest, closing); idx >= 0 {
			header, body = rest[:idx+1], rest[idx+len(closing):]
		} else if bytes.HasSuffix(rest, eofClosing) {
			header = rest[:len(rest)-len(eofClosing)+1]
		} else {
			return core.Record{}, errors.New("frontmatter started but no closing delimiter found")
		}
	}

	var fm frontmatter
	if len(header) > 0 {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return core.Record{}, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
	}

	return core.Record{
		Title:    fm.Title,
		Body:     string(body),
		ColorKey: fm.Color,
	}, nil
}

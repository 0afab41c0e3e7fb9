// package store persists the tool's on-disk state: the calendar document,
// progress checkpoints, pins, skipped-song reports, and the sqlite
// resolution cache. Every write in this package is atomic (temp file in
// the target directory, then rename) so a crash never leaves a half-written
// file behind.
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"songcal/internal/calendar"
	"songcal/internal/shared"
)

// DefaultPrefix is the JS assignment wrapper used when creating a calendar
// document from scratch.
const DefaultPrefix = "const calendarData = "

// DefaultSuffix closes the wrapper.
const DefaultSuffix = ";\n"

// Document is the calendar data file: a JSON object wrapped in a JS
// assignment. Prefix and Suffix are preserved byte-for-byte across
// load/save so the surrounding script text survives every rewrite.
type Document struct {
	Prefix  string
	Suffix  string
	Mapping calendar.Mapping
}

// NewDocument returns an empty document with the default wrapper.
func NewDocument() *Document {
	return &Document{Prefix: DefaultPrefix, Suffix: DefaultSuffix, Mapping: calendar.Mapping{}}
}

// LoadDocument reads a calendar document. The JSON body is everything from
// the first "{" to the last "}"; whatever surrounds it is kept verbatim.
func LoadDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading calendar document: %w", err)
	}

	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: %s contains no JSON object", shared.ErrInvalidInput, path)
	}

	doc := &Document{
		Prefix: string(raw[:start]),
		Suffix: string(raw[end+1:]),
	}
	if err := shared.UnmarshalJSON(raw[start:end+1], &doc.Mapping); err != nil {
		return nil, fmt.Errorf("parsing calendar document %s: %w", path, err)
	}
	return doc, nil
}

// Save writes the document atomically, re-wrapping the mapping JSON in the
// original prefix and suffix.
func (d *Document) Save(path string) error {
	body, err := shared.MarshalJSON(d.Mapping, true)
	if err != nil {
		return fmt.Errorf("encoding calendar document: %w", err)
	}

	var buf strings.Builder
	buf.WriteString(d.Prefix)
	buf.Write(body)
	buf.WriteString(d.Suffix)
	return writeAtomic(path, []byte(buf.String()))
}

// writeAtomic writes data to path via a temp file and rename. The temp file
// lives in the target directory so the rename stays on one filesystem.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package envfile

import (
	"errors"
	"strings"
)

// Errors returned by Document.Upsert for malformed keys and values.
// These are rejected before any mutation, so a failed upsert leaves
// the document untouched.
var (
	ErrInvalidKey   = errors.New("envfile: key is empty, contains '=' or a newline, or starts with '#'")
	ErrInvalidValue = errors.New("envfile: value contains a newline")
)

type lineKind int

const (
	// lineBlank is a line that is empty or whitespace-only.
	lineBlank lineKind = iota

	// lineComment is a line whose first non-space character is '#'.
	lineComment

	// linePair is a KEY=VALUE line.
	linePair

	// lineOther is a non-blank, non-comment line with no '='. It is
	// invisible to All but serialized back verbatim: garbage in the
	// file is not ours to destroy.
	lineOther
)

// record is one line of the document. For linePair records the key
// and value are the parsed, space-trimmed forms; raw holds the exact
// original text and is what serialization emits for untouched lines.
type record struct {
	kind  lineKind
	key   string
	value string
	raw   string
}

// Document is an ordered sequence of environment file lines. The zero
// value is an empty document ready for use.
type Document struct {
	records []record
}

// Parse builds a Document from file content. Parsing never fails:
// every input line maps to exactly one record, and serializing an
// unmodified document reproduces the input byte for byte.
func Parse(data []byte) *Document {
	lines := strings.Split(string(data), "\n")
	document := &Document{records: make([]record, 0, len(lines))}
	for _, line := range lines {
		document.records = append(document.records, parseLine(line))
	}
	return document
}

func parseLine(line string) record {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return record{kind: lineBlank, raw: line}
	case strings.HasPrefix(trimmed, "#"):
		return record{kind: lineComment, raw: line}
	}

	key, value, found := strings.Cut(line, "=")
	if !found {
		return record{kind: lineOther, raw: line}
	}
	return record{
		kind:  linePair,
		key:   strings.TrimSpace(key),
		value: strings.TrimSpace(value),
		raw:   line,
	}
}

// All returns the effective key/value mapping. When a key appears on
// multiple lines, the last occurrence wins, matching what a shell
// sourcing the file would end up with.
func (d *Document) All() map[string]string {
	mapping := make(map[string]string)
	for _, r := range d.records {
		if r.kind == linePair {
			mapping[r.key] = r.value
		}
	}
	return mapping
}

// Get returns the effective value for key (last occurrence wins) and
// whether the key is present at all.
func (d *Document) Get(key string) (string, bool) {
	value, found := "", false
	for _, r := range d.records {
		if r.kind == linePair && r.key == key {
			value, found = r.value, true
		}
	}
	return value, found
}

// Upsert sets key to value. If the key already has a line, the first
// such line is rewritten in place; later duplicates are deliberately
// left alone, so the effective value (last occurrence wins) only
// changes when the key was unique. If the key is absent, a new
// KEY=VALUE line is appended at the end of the document, before the
// trailing newline when the file has one.
func (d *Document) Upsert(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=\n") || strings.HasPrefix(strings.TrimSpace(key), "#") {
		return ErrInvalidKey
	}
	if strings.Contains(value, "\n") {
		return ErrInvalidValue
	}

	for i, r := range d.records {
		if r.kind == linePair && r.key == key {
			d.records[i] = record{kind: linePair, key: key, value: value, raw: key + "=" + value}
			return nil
		}
	}

	fresh := record{kind: linePair, key: key, value: value, raw: key + "=" + value}

	// A file ending in a newline parses to a final empty record.
	// Insert before it so the file keeps its trailing newline.
	if n := len(d.records); n > 0 && d.records[n-1].kind == lineBlank && d.records[n-1].raw == "" {
		d.records = append(d.records[:n-1], fresh, d.records[n-1])
		return nil
	}
	d.records = append(d.records, fresh)
	return nil
}

// Serialize renders the document back to file content. Untouched
// lines are emitted exactly as parsed.
func (d *Document) Serialize() []byte {
	raws := make([]string, len(d.records))
	for i, r := range d.records {
		raws[i] = r.raw
	}
	return []byte(strings.Join(raws, "\n"))
}

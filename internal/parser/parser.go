package parser

import (
	"fmt"
	"io"
	"strings"
)

// Table is the raw output of the tokenizer: the first row as header and every
// following row as plain string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Width returns the number of header columns.
func (t Table) Width() int { return len(t.Header) }

// Tokenize splits CSV text into a header and data rows.
//
// The tokenizer never rejects input. Unbalanced quotes and ragged rows degrade
// to best-effort splitting; callers normalise row length against the header.
func Tokenize(text string) Table {
	var (
		rows     [][]string
		current  []string
		field    strings.Builder
		inQuotes bool
	)
	pushField := func() {
		current = append(current, field.String())
		field.Reset()
	}
	pushRow := func() {
		rows = append(rows, current)
		current = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\r':
			// CR is dropped in both states so CRLF and LF behave the same.
		case inQuotes:
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
				continue
			}
			field.WriteByte(c)
		case c == '"':
			inQuotes = true
		case c == ',':
			pushField()
		case c == '\n':
			pushField()
			pushRow()
		default:
			field.WriteByte(c)
		}
	}
	// flush last field/row; a lone empty field is the artefact of a trailing newline
	pushField()
	if len(current) > 1 || (len(current) == 1 && current[0] != "") {
		pushRow()
	}

	if len(rows) == 0 {
		return Table{Header: []string{}, Rows: [][]string{}}
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	data := rows[1:]
	if data == nil {
		data = [][]string{}
	}
	return Table{Header: header, Rows: data}
}

// TokenizeBytes is Tokenize for a byte slice.
func TokenizeBytes(b []byte) Table {
	return Tokenize(string(b))
}

// ReadAll drains r and tokenizes its content. Only I/O errors are returned.
func ReadAll(r io.Reader) (Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	return TokenizeBytes(b), nil
}

// Package merger inserts generated text into a source buffer at anchors
// computed against the original, unmodified source.
//
// A Merger remembers where every original line currently sits in its
// mutated buffer. Inserting n lines before original row r moves every
// original row >= r down by n, so a sequence of merges whose anchors were
// all computed on the original text lands in the right place as long as the
// rows are applied in non-decreasing order.
package merger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRowOutOfRange is returned by Merge for an anchor outside the original
// buffer.
var ErrRowOutOfRange = errors.New("merger: row out of range")

// Position is a zero-based line and column in the current buffer.
type Position struct {
	Line   int
	Column int
}

// Merger is a line buffer with an original-row to current-line mapping.
type Merger struct {
	lines    []string
	mapping  []int
	modified bool
}

// New returns a Merger over a copy of lines.
func New(lines []string) *Merger {
	buf := make([]string, len(lines))
	copy(buf, lines)
	mapping := make([]int, len(lines))
	for i := range mapping {
		mapping[i] = i
	}
	return &Merger{lines: buf, mapping: mapping}
}

// FromText splits text on newlines and returns a Merger over the result.
// A trailing newline yields a final empty line, so Text round-trips.
func FromText(text string) *Merger {
	return New(strings.Split(text, "\n"))
}

// Len returns the number of original lines.
func (m *Merger) Len() int { return len(m.mapping) }

// Modified reports whether any merge inserted at least one line.
func (m *Merger) Modified() bool { return m.modified }

// Lines returns a copy of the current buffer.
func (m *Merger) Lines() []string {
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

// Text returns the current buffer joined with newlines.
func (m *Merger) Text() string {
	return strings.Join(m.lines, "\n")
}

// Find returns the position of the first line containing text.
func (m *Merger) Find(text string) (Position, bool) {
	for i, line := range m.lines {
		if col := strings.Index(line, text); col >= 0 {
			return Position{Line: i, Column: col}, true
		}
	}
	return Position{}, false
}

// FindLast returns the position of the last line containing text.
func (m *Merger) FindLast(text string) (Position, bool) {
	for i := len(m.lines) - 1; i >= 0; i-- {
		if col := strings.Index(m.lines[i], text); col >= 0 {
			return Position{Line: i, Column: col}, true
		}
	}
	return Position{}, false
}

// Origin maps a current buffer line back to the original row that now sits
// there. Inserted lines have no origin.
func (m *Merger) Origin(line int) (int, bool) {
	for row, cur := range m.mapping {
		if cur == line {
			return row, true
		}
		if cur > line {
			break
		}
	}
	return 0, false
}

// Merge inserts lines, each indented by col spaces, immediately before the
// current position of original row row.
func (m *Merger) Merge(row, col int, lines []string) error {
	if row < 0 || row >= len(m.mapping) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrRowOutOfRange, row, len(m.mapping))
	}
	if len(lines) == 0 {
		return nil
	}

	indent := strings.Repeat(" ", max(col, 0))
	at := m.mapping[row]

	inserted := make([]string, len(lines))
	for i, l := range lines {
		inserted[i] = indent + l
	}

	buf := make([]string, 0, len(m.lines)+len(inserted))
	buf = append(buf, m.lines[:at]...)
	buf = append(buf, inserted...)
	buf = append(buf, m.lines[at:]...)
	m.lines = buf

	for k := row; k < len(m.mapping); k++ {
		m.mapping[k] += len(inserted)
	}
	m.modified = true
	return nil
}

// Package gate decides whether a variable is a heap-allocation candidate by
// looking for textual allocation evidence in the source file.
package gate

import "strings"

// DefaultIndicator is the substring that marks an allocation call.
// It matches malloc, calloc, realloc and any other name containing it.
const DefaultIndicator = "alloc"

// Gate accepts or rejects a variable as a release target.
type Gate interface {
	Qualifies(name string) bool
}

// TextGate is a line-based Gate. A variable qualifies when some line of the
// whole file contains both the allocation indicator and "*<name>". Both
// checks are plain substring matches, so "*p" also matches "*ptr".
type TextGate struct {
	lines     []string
	indicator string
}

var _ Gate = (*TextGate)(nil)

// NewTextGate creates a TextGate over content. An empty indicator falls
// back to DefaultIndicator.
func NewTextGate(content []byte, indicator string) *TextGate {
	if indicator == "" {
		indicator = DefaultIndicator
	}
	return &TextGate{
		lines:     strings.Split(string(content), "\n"),
		indicator: indicator,
	}
}

// Qualifies scans every line on each call; results are not cached.
func (g *TextGate) Qualifies(name string) bool {
	if name == "" {
		return false
	}
	deref := "*" + name
	for _, line := range g.lines {
		if strings.Contains(line, g.indicator) && strings.Contains(line, deref) {
			return true
		}
	}
	return false
}

// Evidence returns the 1-based line numbers that qualify name.
func (g *TextGate) Evidence(name string) []int {
	if name == "" {
		return nil
	}
	deref := "*" + name
	var lines []int
	for i, line := range g.lines {
		if strings.Contains(line, g.indicator) && strings.Contains(line, deref) {
			lines = append(lines, i+1)
		}
	}
	return lines
}

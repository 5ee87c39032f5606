package inject

import (
	"regexp"
	"strings"
)

// ScopeResolver maps a 1-based source line to the function enclosing it.
type ScopeResolver interface {
	ScopeOf(line int) (string, bool)
}

// BraceScope resolves function scope from raw text by counting braces.
// Text at brace depth zero whose parentheses balance, possibly across
// several lines, names a function header unless it ends in ";". The
// header's function is entered at the first "{" and left when the depth
// returns to zero. Braces in comments and strings are counted too.
type BraceScope struct {
	functions []string // indexed by line-1; "" outside any function
}

var _ ScopeResolver = (*BraceScope)(nil)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewBraceScope scans lines once and records the function active after
// each line has been read.
func NewBraceScope(lines []string) *BraceScope {
	s := &BraceScope{functions: make([]string, len(lines))}

	depth := 0
	current, pending := "", ""
	header := "" // a depth-zero header whose parentheses are still open
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		open := strings.Count(line, "{")
		closing := strings.Count(line, "}")

		if depth == 0 {
			if header != "" {
				header += " " + trimmed
			} else if strings.Contains(line, "(") {
				header = trimmed
			}

			switch {
			case header != "" && balanced(header):
				pending = ""
				if !strings.HasSuffix(trimmed, ";") {
					pending = headerName(header)
				}
				header = ""
			case header != "":
				pending = ""
				if strings.HasSuffix(trimmed, ";") {
					header = ""
				}
			case trimmed != "" && open == 0:
				pending = ""
			}
			if open > 0 {
				current, pending, header = pending, "", ""
			}
		}

		depth += open - closing
		if depth <= 0 {
			depth = 0
			if open > 0 || closing > 0 {
				current = ""
			}
		}
		s.functions[i] = current
	}
	return s
}

// ScopeOf returns the function enclosing line.
func (s *BraceScope) ScopeOf(line int) (string, bool) {
	if line < 1 || line > len(s.functions) {
		return "", false
	}
	fn := s.functions[line-1]
	return fn, fn != ""
}

func balanced(header string) bool {
	return strings.Count(header, "(") <= strings.Count(header, ")")
}

// headerName extracts the function name from a header line: the last word
// before the first "(", without pointer stars.
func headerName(line string) string {
	before, _, _ := strings.Cut(line, "(")
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return ""
	}
	name := strings.TrimLeft(fields[len(fields)-1], "*")
	if !identPattern.MatchString(name) {
		return ""
	}
	return name
}

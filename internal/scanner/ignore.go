package scanner

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnorePattern is one line of an ignore file, in gitignore syntax.
type IgnorePattern struct {
	raw      string
	negate   bool
	dirOnly  bool
	anchored bool
	segments []string
}

// ParseIgnorePattern parses a gitignore-style pattern.
func ParseIgnorePattern(line string) IgnorePattern {
	p := IgnorePattern{raw: line}
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		p.negate = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		p.dirOnly = true
		line = rest
	}
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		p.anchored = true
		line = rest
	}
	p.segments = strings.Split(line, "/")
	return p
}

func (p IgnorePattern) String() string { return p.raw }

// IsNegation reports whether the pattern re-includes matching paths.
func (p IgnorePattern) IsNegation() bool { return p.negate }

// Match reports whether rel, a slash-separated path relative to the scan
// root, is covered by the pattern. Directory patterns cover everything
// below the directory.
func (p IgnorePattern) Match(rel string) bool {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	last := len(parts) - 1
	if p.anchored {
		last = 0
	}
	for start := 0; start <= last; start++ {
		if p.matchAt(parts[start:]) {
			return true
		}
	}
	return false
}

func (p IgnorePattern) matchAt(parts []string) bool {
	matched, consumed := matchSegments(p.segments, parts)
	if !matched {
		return false
	}
	if p.dirOnly {
		// the pattern must name a directory, so something has to remain
		return consumed < len(parts)
	}
	return true
}

// matchSegments matches pattern segments against a prefix of parts and
// returns how many parts were consumed. "**" spans any number of parts.
func matchSegments(pattern, parts []string) (bool, int) {
	if len(pattern) == 0 {
		return true, 0
	}
	if pattern[0] == "**" {
		for skip := 0; skip <= len(parts); skip++ {
			if ok, n := matchSegments(pattern[1:], parts[skip:]); ok {
				return true, skip + n
			}
		}
		return false, 0
	}
	if len(parts) == 0 {
		return false, 0
	}
	ok, err := path.Match(strings.ToLower(pattern[0]), strings.ToLower(parts[0]))
	if err != nil || !ok {
		return false, 0
	}
	matched, n := matchSegments(pattern[1:], parts[1:])
	return matched, n + 1
}

// readIgnoreFile loads the patterns in dir/name. A missing file yields no
// patterns.
func readIgnoreFile(dir, name string) ([]IgnorePattern, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []IgnorePattern
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, ParseIgnorePattern(line))
	}
	return patterns, sc.Err()
}

// ignored applies patterns in order; a later negation re-includes.
func ignored(rel string, patterns []IgnorePattern) bool {
	out := false
	for _, p := range patterns {
		if p.Match(rel) {
			out = !p.negate
		}
	}
	return out
}

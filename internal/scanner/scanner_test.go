package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScannerScan(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.c":           "int main(void) { return 0; }",
		"src/list.c":       "void f(void) {}",
		"src/list.h":       "void f(void);",
		"README.md":        "# Test",
		"Makefile":         "all:",
		".hidden/secret.c": "void g(void) {}",
		"build/gen.c":      "void h(void) {}",
		".git/config":      "[core]",
	})

	results, err := Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"main.c", "src/list.c"}
	if got := paths(results); !equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	for _, f := range results {
		if f.Kind != KindSource {
			t.Errorf("Expected %s to be a source, got %s", f.Path, f.Kind)
		}
		if !filepath.IsAbs(f.FullPath) {
			t.Errorf("Expected absolute path, got %s", f.FullPath)
		}
		if f.Size == 0 {
			t.Errorf("Expected %s to have a size", f.Path)
		}
	}
}

func TestScannerIncludeHeaders(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.c": "x",
		"a.h": "x",
	})

	opts := DefaultOptions()
	opts.IncludeHeaders = true
	results, err := New(opts).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(results) != 2 || results[1].Kind != KindHeader {
		t.Errorf("Expected a.c and header a.h, got %v", results)
	}
}

func TestScannerWithIgnoreFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".autofreeignore": `# generated code
*_gen.c
tests/
/legacy.c
!keep_gen.c
`,
		"app.c":             "x",
		"parser_gen.c":      "x",
		"keep_gen.c":        "x",
		"legacy.c":          "x",
		"lib/legacy.c":      "x",
		"tests/unit.c":      "x",
		"lib/tests/more.c":  "x",
		"lib/lexer_gen.c":   "x",
		"lib/nested/main.c": "x",
	})

	results, err := Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"app.c", "keep_gen.c", "lib/legacy.c", "lib/nested/main.c"}
	if got := paths(results); !equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestScannerNestedIgnoreFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"lib/.autofreeignore": "/skip.c\n",
		"lib/skip.c":          "x",
		"lib/keep.c":          "x",
		"skip.c":              "x",
	})

	results, err := Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"lib/keep.c", "skip.c"}
	if got := paths(results); !equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestScannerSkipHidden(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"visible.c":      "x",
		".hidden/file.c": "x",
	})

	results, _ := Scan(tmpDir)
	if got := paths(results); !equal(got, []string{"visible.c"}) {
		t.Errorf("Should skip hidden files when SkipHidden=true, got %v", got)
	}

	opts := DefaultOptions()
	opts.SkipHidden = false
	results, _ = New(opts).Scan(tmpDir)
	if got := paths(results); !equal(got, []string{".hidden/file.c", "visible.c"}) {
		t.Errorf("Should find hidden files when SkipHidden=false, got %v", got)
	}
}

func TestScannerMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing root")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		ext      string
		expected Kind
	}{
		{".c", KindSource},
		{".C", KindSource},
		{".h", KindHeader},
		{".cpp", KindOther},
		{".go", KindOther},
		{"", KindOther},
	}

	for _, tt := range tests {
		if got := KindOf(tt.ext); got != tt.expected {
			t.Errorf("KindOf(%q) = %s, expected %s", tt.ext, got, tt.expected)
		}
	}
}

func TestIgnorePatternMatch(t *testing.T) {
	tests := []struct {
		pattern  string
		path     string
		expected bool
	}{
		{"*.o", "main.o", true},
		{"*.o", "src/main.o", true},
		{"*.o", "main.c", false},
		{"build/", "build/gen.c", true},
		{"build/", "src/build/gen.c", true},
		{"build/", "build", false},
		{"/top.c", "top.c", true},
		{"/top.c", "src/top.c", false},
		{"src/*.c", "src/a.c", true},
		{"src/*.c", "src/x/a.c", false},
		{"**/gen/*.c", "a/b/gen/x.c", true},
		{"gen/**", "gen/a/b.c", true},
		{"**/a.c", "a.c", true},
		{"file?.c", "file1.c", true},
		{"file[12].c", "file3.c", false},
		{"README", "readme", true},
	}

	for _, tt := range tests {
		p := ParseIgnorePattern(tt.pattern)
		if got := p.Match(tt.path); got != tt.expected {
			t.Errorf("Pattern %q Match(%q) = %v, expected %v", tt.pattern, tt.path, got, tt.expected)
		}
	}
}

func TestIgnoredNegation(t *testing.T) {
	patterns := []IgnorePattern{
		ParseIgnorePattern("*.c"),
		ParseIgnorePattern("!main.c"),
	}
	if !ignored("util.c", patterns) {
		t.Error("util.c should be ignored")
	}
	if ignored("main.c", patterns) {
		t.Error("main.c should be re-included")
	}
	if patterns[1].String() != "!main.c" {
		t.Errorf("String() = %q", patterns[1].String())
	}
	if !patterns[1].IsNegation() {
		t.Error("expected negation")
	}
}

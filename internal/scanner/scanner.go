// Package scanner walks a source tree and collects the C files to
// instrument. It honors .autofreeignore files written in gitignore syntax.
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo describes a discovered file.
type FileInfo struct {
	Path     string // slash-separated, relative to the root
	FullPath string
	Kind     Kind
	Size     int64
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // skip files and directories starting with "."
	IncludeHeaders  bool     // report .h files alongside .c files
	DefaultExcludes []string // directory names never entered
	IgnoreFileName  string
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".autofreeignore",
		DefaultExcludes: []string{
			".git",
			".hg",
			".svn",
			".autofree",
			"build",
			"cmake-build-debug",
			"cmake-build-release",
			"CMakeFiles",
			"out",
			"obj",
			"bin",
			"third_party",
			"vendor",
		},
	}
}

// Scanner provides file tree scanning.
type Scanner struct {
	opts Options
}

// New creates a Scanner.
func New(opts Options) *Scanner {
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = DefaultOptions().IgnoreFileName
	}
	return &Scanner{opts: opts}
}

// ignoreScope holds the patterns read from one directory's ignore file;
// they match paths relative to that directory.
type ignoreScope struct {
	base     string
	patterns []IgnorePattern
}

// Scan walks root and returns the C files below it, sorted by path.
// Symlinks are not followed.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	var scopes []ignoreScope
	var files []FileInfo

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." {
				if s.skipName(d.Name()) || s.isDefaultExcluded(d.Name()) || isIgnored(rel+"/", scopes) {
					return filepath.SkipDir
				}
			}
			patterns, err := readIgnoreFile(path, s.opts.IgnoreFileName)
			if err != nil {
				return fmt.Errorf("reading ignore file in %s: %w", rel, err)
			}
			if len(patterns) > 0 {
				scopes = append(scopes, ignoreScope{base: rel, patterns: patterns})
			}
			return nil
		}

		if !d.Type().IsRegular() || s.skipName(d.Name()) {
			return nil
		}
		kind := KindOf(filepath.Ext(path))
		if kind == KindOther || (kind == KindHeader && !s.opts.IncludeHeaders) {
			return nil
		}
		if isIgnored(rel, scopes) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:     rel,
			FullPath: path,
			Kind:     kind,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Scanner) skipName(name string) bool {
	return s.opts.SkipHidden && strings.HasPrefix(name, ".")
}

func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

func isIgnored(rel string, scopes []ignoreScope) bool {
	for _, sc := range scopes {
		local := rel
		if sc.base != "." {
			prefix := sc.base + "/"
			if !strings.HasPrefix(rel, prefix) {
				continue
			}
			local = strings.TrimPrefix(rel, prefix)
		}
		if ignored(local, sc.patterns) {
			return true
		}
	}
	return false
}

// Scan scans root with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}

// Package store reads and writes files through an afs storage service.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
)

// ErrIO is returned when a file cannot be read or written.
var ErrIO = errors.New("io failure")

// Store wraps an afs.Service.
type Store struct {
	fs afs.Service
}

// New creates a Store over the default afs service.
func New() *Store {
	return &Store{fs: afs.New()}
}

// Read returns the content at location.
func (s *Store) Read(ctx context.Context, location string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL(location))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrIO, location, err)
	}
	return data, nil
}

// Write replaces the content at location.
func (s *Store) Write(ctx context.Context, location string, data []byte) error {
	if err := s.fs.Upload(ctx, URL(location), 0644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrIO, location, err)
	}
	return nil
}

// Exists reports whether location exists.
func (s *Store) Exists(ctx context.Context, location string) bool {
	ok, err := s.fs.Exists(ctx, URL(location))
	return err == nil && ok
}

// URL turns a local path into an absolute file URL; locations that
// already carry a scheme are returned as is.
func URL(location string) string {
	if strings.Contains(location, "://") {
		return location
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return location
	}
	return "file://" + filepath.ToSlash(abs)
}

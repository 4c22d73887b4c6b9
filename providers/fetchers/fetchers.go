/*
Package fetchers provides lockfile fetching functions for local and remote project sources.

Usage:
	todo:
*/
package fetchers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrFileNotFound = errors.New("lockfile not found")
)

// FileFetcher interface defines fetchers methods.
type FileFetcher interface {
	FileContent(ctx context.Context, path string) ([]byte, error)
}

// ByteMapFetcher is used for storing file contents in memory (usefull for debugging/testing or for building custom project sources logic)
type ByteMapFetcher struct {
	Files map[string][]byte
}

// FileContent retrieves (if found) []byte contents from it's map using path argument as a key.
func (sf ByteMapFetcher) FileContent(ctx context.Context, path string) ([]byte, error) {
	v, ok := sf.Files[path]
	if !ok {
		return nil, ErrFileNotFound
	}
	return v, nil
}

// OSFetcher reads files from a project directory on the local filesystem.
// Paths passed to FileContent are resolved relative to Dir.
type OSFetcher struct {
	Dir string
}

// NewOSFetcher constructs an OSFetcher rooted at the specified project directory.
func NewOSFetcher(dir string) FileFetcher {
	return &OSFetcher{Dir: dir}
}

// FileContent reads the specified file from the project directory.
func (f OSFetcher) FileContent(ctx context.Context, path string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(f.Dir, path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("unable to read '%s' from project directory: %w", path, err)
	}
	return b, nil
}

/*
Package parsers provides parsers for project lockfiles.

Goals:
 - Extracting the tool version a lockfile was generated with
 - Parsing locked dependency lists into readable structs

Usage:
	todo:
*/
package parsers

import (
	"context"
	"errors"

	"github.com/gemhub/gemhub-core/providers/versioneer"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

// LockParser represents basic interface for parsers in this package.
type LockParser interface {
	// BundledWith returns the tool version recorded as having generated the
	// lockfile. A lockfile without such a record yields (nil, nil).
	BundledWith(context.Context) (versioneer.Version, error)
	// Requirements have to return list of locked dependencies (if not possible - return nills)
	Requirements(context.Context) ([]Requirement, error)
	// Constraints have to return list of dependencies (with constraints or not).
	// These dependencies do not represent locked ones.
	Constraints(context.Context) ([]Constraint, error)
}

// Constraint represents one dependency/constraint.
type Constraint struct {
	Name    string
	Version string
}

// Requirement represents locked dependency.
type Requirement struct {
	Name    string
	Version string
}

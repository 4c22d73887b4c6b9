/*
Package versioneer provides parsers for package versions and version requirements.

Usage:
	todo:
*/
package versioneer

// Version represents a fixed version (e.g. '2.4.0' or '1.0.0.rc.1', depending on the implementation)
type Version interface {
	Match(b Constraints) bool // Match method validates that the version is in constraints.
	Compare(b Version) int    // Compare method defines total order: -1 when less, 0 when equal, 1 when greater.
	Released() bool           // Released method reports whether the version is a published, non-development build.
	Value() string            // Value method returns original unmodified raw value of the version.
}

// Constraints represent a requirement definition (e.g. '>= 2.3, < 4' depending on the implementation)
type Constraints interface {
	Match(b Version) bool // Match method validates that the version is in constraints.
	Specific() bool       // Specific method reports whether the requirement names exactly one version.
	Value() string        // Value method returns original unmodified raw value of the constraints.
}

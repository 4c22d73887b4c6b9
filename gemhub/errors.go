package gemhub

import "fmt"

// FetchError represents a failure to retrieve the published version feed.
type FetchError struct {
	Gem string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to fetch published versions of %s: %v", e.Gem, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RelaunchError represents a failed process replacement. By the time it is
// raised the decision to switch versions was already committed, so callers
// must treat it as fatal.
type RelaunchError struct {
	Version string
	Err     error
}

func (e *RelaunchError) Error() string {
	return fmt.Sprintf("unable to re-launch under version %s: %v", e.Version, e.Err)
}

func (e *RelaunchError) Unwrap() error {
	return e.Err
}

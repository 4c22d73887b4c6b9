package gemhub

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gemhub/gemhub-core/providers/versioneer"
)

// lockfileMockData is a minimal project lockfile generated with 2.4.0.
var lockfileMockData = map[string][]byte{
	"Gemfile.lock": []byte(`GEM
  remote: https://rubygems.org/
  specs:
    rake (13.0.6)

PLATFORMS
  ruby

DEPENDENCIES
  rake

BUNDLED WITH
   2.4.0
`),
}

// FeedMock mocks VersionFeed logic.
type FeedMock struct {
	mock.Mock
}

// Mock Versions method.
func (m *FeedMock) Versions(ctx context.Context, name string) ([]versioneer.Version, error) {
	args := m.Called(ctx, name)
	var versions []versioneer.Version
	if vs, ok := args.Get(0).([]versioneer.Version); ok {
		versions = vs
	}
	return versions, args.Error(1)
}

// stubPlatform is a fixed-answer Platform implementation.
type stubPlatform struct {
	trampoline bool
	inProject  bool
}

func (s stubPlatform) SupportsVersionTrampolining() bool { return s.trampoline }
func (s stubPlatform) InProjectContext() bool            { return s.inProject }

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func mustVersions(t *testing.T, raw ...string) []versioneer.Version {
	t.Helper()
	versions := make([]versioneer.Version, len(raw))
	for i, r := range raw {
		v, err := versioneer.NewGemVersion(r)
		if err != nil {
			t.Fatalf("unexpected test version error: %v", err)
		}
		versions[i] = v
	}
	return versions
}

func mustConstraints(t *testing.T, raw string) versioneer.Constraints {
	t.Helper()
	c, err := versioneer.NewGemConstraints(raw)
	if err != nil {
		t.Fatalf("unexpected test constraint error: %v", err)
	}
	return c
}

func newTestResolver(t *testing.T, current string, lockfile LockfileSource, feed VersionFeed, platform Platform, pinned string) *Resolver {
	t.Helper()
	resolver, err := NewResolver("bundler", current, lockfile, feed, platform, testLogger())
	if err != nil {
		t.Fatalf("unexpected resolver error: %v", err)
	}
	resolver.getenv = func(name string) string {
		if name == EnvLockedVersion {
			return pinned
		}
		return ""
	}
	return resolver
}

func TestResolver_NewMethod_InvalidCurrent(t *testing.T) {
	_, err := NewResolver("bundler", "not-a-version", nil, nil, stubPlatform{}, testLogger())
	if err == nil {
		t.Error("expected error on invalid running version, got none")
	}
}

func TestResolver_NeedsAutoSwitchMethod(t *testing.T) {
	ready := stubPlatform{trampoline: true, inProject: true}
	locked := NewMemorySource(lockfileMockData)
	noLockfile := NewMemorySource(map[string][]byte{})
	prerelease := NewMemorySource(map[string][]byte{
		"Gemfile.lock": []byte("BUNDLED WITH\n   2.5.0.dev\n"),
	})

	cases := []struct {
		Name     string
		Current  string
		Lockfile LockfileSource
		Platform Platform
		Pinned   string
		Result   bool
	}{
		{"switch_needed", "2.3.0", locked, ready, "", true},
		{"pin_marker_short_circuits", "2.3.0", locked, ready, "2.4.0", false},
		{"pin_marker_any_value", "2.3.0", locked, ready, "1.0.0", false},
		{"no_trampolining_support", "2.3.0", locked, stubPlatform{inProject: true}, "", false},
		{"outside_project", "2.3.0", locked, stubPlatform{trampoline: true}, "", false},
		{"no_lockfile", "2.3.0", noLockfile, ready, "", false},
		{"unreleased_lockfile_version", "2.3.0", prerelease, ready, "", false},
		{"already_matching", "2.4.0", locked, ready, "", false},
		{"lockfile_older_than_current", "2.5.0", locked, ready, "", true},
	}

	for _, testCase := range cases {
		t.Run(testCase.Name, func(t *testing.T) {
			resolver := newTestResolver(t, testCase.Current, testCase.Lockfile, nil, testCase.Platform, testCase.Pinned)
			if got := resolver.NeedsAutoSwitch(context.Background()); got != testCase.Result {
				t.Errorf("expected NeedsAutoSwitch() == %v, got %v", testCase.Result, got)
			}
		})
	}
}

func TestResolver_NeedsAutoSwitchMethod_Idempotent(t *testing.T) {
	resolver := newTestResolver(t, "2.3.0", NewMemorySource(lockfileMockData), nil, stubPlatform{trampoline: true, inProject: true}, "")

	first := resolver.NeedsAutoSwitch(context.Background())
	second := resolver.NeedsAutoSwitch(context.Background())
	assert.True(t, first)
	assert.Equal(t, first, second)
}

func TestResolver_LockfileVersionMethod_Memoized(t *testing.T) {
	resolver := newTestResolver(t, "2.3.0", NewMemorySource(lockfileMockData), nil, stubPlatform{}, "")

	first := resolver.LockfileVersion(context.Background())
	if first == nil || first.Value() != "2.4.0" {
		t.Fatalf("expected lockfile version '2.4.0', got '%+v'", first)
	}

	// Swap the source out; the memoized value must win.
	resolver.lockfile = NewMemorySource(map[string][]byte{})
	second := resolver.LockfileVersion(context.Background())
	assert.Same(t, first, second)
}

func TestResolver_ResolveForUpdateMethod(t *testing.T) {
	feedVersions := []string{"2.2.0", "2.3.0", "2.4.0", "2.5.0.dev"}

	cases := []struct {
		Name        string
		Current     string
		Requirement string
		Resolved    string // empty means no resolution
	}{
		{"range_selects_highest_released", "2.3.0", ">= 2.3", "2.4.0"},
		{"range_already_newest", "2.4.0", ">= 2.3", ""},
		{"range_never_regresses", "2.5.0", ">= 2.0", ""},
		{"specific_differs", "2.3.0", "= 2.4.0", "2.4.0"},
		{"specific_matches_current", "2.4.0", "= 2.4.0", ""},
		{"specific_downgrade_allowed", "2.3.0", "= 2.2.0", "2.2.0"},
		{"only_unreleased_matches", "2.3.0", "> 2.4.0", ""},
		{"specific_prerelease_skipped", "2.3.0", "= 2.5.0.dev", ""},
		{"nothing_matches", "2.3.0", ">= 9.0", ""},
	}

	for _, testCase := range cases {
		t.Run(testCase.Name, func(t *testing.T) {
			feedMock := new(FeedMock)
			feedMock.On("Versions", mock.Anything, "bundler").Return(mustVersions(t, feedVersions...), nil)

			resolver := newTestResolver(t, testCase.Current, nil, feedMock, stubPlatform{}, "")
			resolved, err := resolver.ResolveForUpdate(context.Background(), mustConstraints(t, testCase.Requirement))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if testCase.Resolved == "" {
				assert.Nil(t, resolved)
				return
			}
			if assert.NotNil(t, resolved) {
				assert.Equal(t, testCase.Resolved, resolved.Value())
			}
		})
	}
}

func TestResolver_ResolveForUpdateMethod_EmptyFeed(t *testing.T) {
	feedMock := new(FeedMock)
	feedMock.On("Versions", mock.Anything, "bundler").Return([]versioneer.Version{}, nil)

	resolver := newTestResolver(t, "2.3.0", nil, feedMock, stubPlatform{}, "")
	resolved, err := resolver.ResolveForUpdate(context.Background(), mustConstraints(t, ">= 0"))
	assert.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestResolver_ResolveForUpdateMethod_FetchError(t *testing.T) {
	feedMock := new(FeedMock)
	feedMock.On("Versions", mock.Anything, "bundler").Return(nil, fmt.Errorf("connection refused"))

	resolver := newTestResolver(t, "2.3.0", nil, feedMock, stubPlatform{}, "")
	resolved, err := resolver.ResolveForUpdate(context.Background(), mustConstraints(t, ">= 0"))
	assert.Nil(t, resolved)

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestResolver_ResolveForUpdateMethod_FeedMemoized(t *testing.T) {
	feedMock := new(FeedMock)
	feedMock.On("Versions", mock.Anything, "bundler").Return(mustVersions(t, "2.3.0", "2.4.0"), nil).Once()

	resolver := newTestResolver(t, "2.3.0", nil, feedMock, stubPlatform{}, "")
	for i := 0; i < 3; i++ {
		_, err := resolver.ResolveForUpdate(context.Background(), mustConstraints(t, ">= 2.3"))
		assert.NoError(t, err)
	}
	feedMock.AssertNumberOfCalls(t, "Versions", 1)
}

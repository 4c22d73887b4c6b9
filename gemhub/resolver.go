package gemhub

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/gemhub/gemhub-core/providers/api/rubygems"
	"github.com/gemhub/gemhub-core/providers/versioneer"
)

// VersionFeed returns the published versions of a package, sorted ascending.
type VersionFeed interface {
	Versions(ctx context.Context, name string) ([]versioneer.Version, error)
}

// NewRubyGemsFeed adapts a rubygems API client to the VersionFeed contract.
func NewRubyGemsFeed(client rubygems.Client) VersionFeed {
	return &rubyGemsFeed{client: client}
}

type rubyGemsFeed struct {
	client rubygems.Client
}

// Versions fetches the gem's releases and returns them in ascending version
// order. Entries the version parser rejects are skipped.
func (f rubyGemsFeed) Versions(ctx context.Context, name string) ([]versioneer.Version, error) {
	releases, _, err := f.client.Versions(ctx, name)
	if err != nil {
		return nil, err
	}

	versions := make([]versioneer.Version, 0, len(releases))
	for _, release := range releases {
		v, err := versioneer.NewGemVersion(release.Number)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].Compare(versions[j]) < 0
	})
	return versions, nil
}

// Resolver decides the target tool version for the three switch triggers:
// lockfile auto-switch, locked install and explicit update. Current version,
// lockfile version and the feed list are read at most once per instance;
// resolver state is scoped to one process invocation.
type Resolver struct {
	gemName  string
	current  versioneer.Version
	lockfile LockfileSource
	feed     VersionFeed
	platform Platform
	logger   *log.Logger

	// getenv is replaced in tests.
	getenv func(string) string

	lockfileVersion versioneer.Version
	lockfileLoaded  bool
	feedVersions    []versioneer.Version
	feedLoaded      bool
}

// NewResolver constructs a Resolver for the named tool running as
// currentVersion. If 'logger' parameter is nil - log.Default() will be used instead.
func NewResolver(gemName, currentVersion string, lockfile LockfileSource, feed VersionFeed, platform Platform, logger *log.Logger) (*Resolver, error) {
	current, err := versioneer.NewGemVersion(currentVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid running version %q: %w", currentVersion, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		gemName:  gemName,
		current:  current,
		lockfile: lockfile,
		feed:     feed,
		platform: platform,
		logger:   logger,
		getenv:   os.Getenv,
	}, nil
}

// CurrentVersion returns the version of the running executable.
func (r *Resolver) CurrentVersion() versioneer.Version {
	return r.current
}

// LockfileVersion returns the memoized lockfile-recorded tool version,
// nil when the project has none.
func (r *Resolver) LockfileVersion(ctx context.Context) versioneer.Version {
	if r.lockfileLoaded {
		return r.lockfileVersion
	}
	r.lockfileLoaded = true

	if r.lockfile == nil {
		return nil
	}
	version, err := r.lockfile.BundledWith(ctx)
	if err != nil {
		r.logger.Debug("unable to read lockfile version", "err", err)
		return nil
	}
	r.lockfileVersion = version
	return r.lockfileVersion
}

// NeedsAutoSwitch reports whether the process should trampoline onto the
// lockfile-recorded version: nothing is pinned yet, the host supports
// trampolining, execution is inside a project, and the lockfile names a
// released version different from the running one. The pin check comes
// first so a relaunched child short-circuits immediately.
func (r *Resolver) NeedsAutoSwitch(ctx context.Context) bool {
	if r.getenv(EnvLockedVersion) != "" {
		return false
	}
	if !r.platform.SupportsVersionTrampolining() {
		return false
	}
	if !r.platform.InProjectContext() {
		return false
	}

	locked := r.LockfileVersion(ctx)
	if locked == nil || !locked.Released() {
		return false
	}
	return locked.Compare(r.current) != 0
}

// ResolveForUpdate selects the version an explicit update request should
// switch to: the highest published version satisfying the requirement.
//
// A specific requirement needs an update whenever the selection differs from
// the running version (downgrades included); a range requirement only when
// the selection is strictly newer. Unreleased versions are never selected;
// empty feeds resolve to nil. Feed failures are returned as *FetchError.
func (r *Resolver) ResolveForUpdate(ctx context.Context, requirement versioneer.Constraints) (versioneer.Version, error) {
	versions, err := r.publishedVersions(ctx)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, nil
	}

	// Scan from the newest end backward so the best satisfying version wins.
	// Unreleased entries are skipped outright: a prerelease atop the feed
	// must not shadow the newest release below it.
	var selected versioneer.Version
	for i := len(versions) - 1; i >= 0; i-- {
		if !versions[i].Released() {
			continue
		}
		if requirement.Match(versions[i]) {
			selected = versions[i]
			break
		}
	}
	if selected == nil {
		return nil, nil
	}

	var needsUpdate bool
	if requirement.Specific() {
		needsUpdate = selected.Compare(r.current) != 0
	} else {
		needsUpdate = r.current.Compare(selected) < 0
	}

	if !selected.Released() || !needsUpdate {
		return nil, nil
	}
	return selected, nil
}

// publishedVersions memoizes the ascending feed list for the resolver lifetime.
func (r *Resolver) publishedVersions(ctx context.Context) ([]versioneer.Version, error) {
	if r.feedLoaded {
		return r.feedVersions, nil
	}

	versions, err := r.feed.Versions(ctx, r.gemName)
	if err != nil {
		return nil, &FetchError{Gem: r.gemName, Err: err}
	}
	r.feedVersions = versions
	r.feedLoaded = true
	return r.feedVersions, nil
}

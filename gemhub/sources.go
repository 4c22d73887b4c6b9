/*
Package gemhub provides convinient api for keeping a package-manager CLI on
the tool version its project lockfile requires: reading the lockfile-recorded
version, resolving update targets against the rubygems.org feed and
re-launching the running process under the resolved version.

Usage:
	todo:
*/
package gemhub

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gemhub/gemhub-core/providers/fetchers"
	"github.com/gemhub/gemhub-core/providers/parsers"
	"github.com/gemhub/gemhub-core/providers/versioneer"
)

// gitRepoRgx is used to parse repository info from GIT-compatible address string.
//
// Examples matching the regexp:
//     'git@myhostname:vendor/reponame.git'
//     'https://myhostname/vendor/reponame.git' and so on...
// Groups:
//     1: protocol (e.g. 'https://' or 'git@')
//     6: hostname (e.g. 'github.com')
//     8: full repo name (e.g. 'vendor/reponame')
var gitRepoRgx string = `^(((git@)|(git:|ssh:|(http[s]?:\/\/))))([\w\.@\\-~]+)(:|\/)([\w\.@\:\/\-~]+)(\.git)(\/-)?`

// gitRepoRgxCompiled is compiled from gitRepoRgx.
var gitRepoRgxCompiled *regexp.Regexp

func init() {
	gitRepoRgxCompiled = regexp.MustCompile(gitRepoRgx)
}

// LockfileSource represents abstraction over a project's lockfile and
// provides convinient interface to fetch its version information.
type LockfileSource interface {
	// BundledWith returns the tool version the lockfile was generated with.
	// A missing lockfile or a lockfile without the record yields (nil, nil).
	BundledWith(ctx context.Context) (versioneer.Version, error)
	// Requirements returns list of project's locked dependencies versions (if any).
	Requirements(ctx context.Context) ([]parsers.Requirement, error)
}

// NewFileSource constructs a LockfileSource reading 'Gemfile.lock' from the
// specified project directory.
func NewFileSource(dir string) LockfileSource {
	return &lockfileSource{parser: parsers.NewGemfileLockParser(fetchers.NewOSFetcher(dir), "")}
}

// NewMemorySource constructs a LockfileSource over in-memory file contents.
func NewMemorySource(files map[string][]byte) LockfileSource {
	return &lockfileSource{parser: parsers.NewGemfileLockParser(fetchers.ByteMapFetcher{Files: files}, "")}
}

// gitRepo represents basic repository information.
type gitRepo struct {
	host, vendor, repo string
}

// supGitSrcs - supported git sources.
var supGitSrcs = []string{"github.com"}

// NewGitSource constructs new Git LockfileSource implementation, reading the
// repository's 'Gemfile.lock' through the GitHub contents API.
//
// SHA can both refer to commit hash/branch/tag.
//
// You can pass specific signed httpClient with any information you want the requests go with
// for example you would like to pass OAuth2/BasicAuth information to github API for increased
// rate limits and so on.
//
// repoAddr is your repository address (e.g. 'git@myhostname:vendor/reponame.git')
func NewGitSource(httpClient *http.Client, repoAddr, sha string) (LockfileSource, error) {
	repoData, err := parseGitAddr(repoAddr)
	if err != nil {
		return nil, err
	}
	fetcher := fetchers.NewGitHubFetcher(httpClient, repoData.vendor, repoData.repo, sha)
	return &lockfileSource{parser: parsers.NewGemfileLockParser(fetcher, "")}, nil
}

// lockfileSource adapts a LockParser to the LockfileSource contract,
// translating "no lockfile" into an absent version.
type lockfileSource struct {
	parser parsers.LockParser
}

// BundledWith returns the tool version the lockfile was generated with.
func (ls lockfileSource) BundledWith(ctx context.Context) (versioneer.Version, error) {
	version, err := ls.parser.BundledWith(ctx)
	if err != nil {
		if err == parsers.ErrFileNotFound {
			return nil, nil
		}
		return nil, err
	}
	return version, nil
}

// Requirements returns list of project's locked dependencies versions (if any).
func (ls lockfileSource) Requirements(ctx context.Context) ([]parsers.Requirement, error) {
	return ls.parser.Requirements(ctx)
}

// parseGitAddr - helper to parse information from git repository address string
func parseGitAddr(addr string) (*gitRepo, error) {
	matches := gitRepoRgxCompiled.FindStringSubmatch(addr)
	if matches == nil || matches[6] == "" || matches[8] == "" {
		return nil, fmt.Errorf("unsupported git repository format %q", addr)
	}
	hostName, repoName := matches[6], matches[8]

	if !gitHostSupported(hostName) {
		return nil, fmt.Errorf("git source %q is not supported", hostName)
	}

	if !strings.Contains(repoName, "/") {
		return nil, fmt.Errorf("unable to parse vendor from name %q", repoName)
	}
	repoNameParts := strings.Split(repoName, "/")

	return &gitRepo{host: hostName, vendor: repoNameParts[0], repo: repoNameParts[1]}, nil
}

// gitHostSupported - helper to check git source support status
func gitHostSupported(host string) bool {
	for _, v := range supGitSrcs {
		if v == host {
			return true
		}
	}
	return false
}

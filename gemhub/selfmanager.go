package gemhub

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/gemhub/gemhub-core/providers/api/rubygems"
	"github.com/gemhub/gemhub-core/providers/installers"
	"github.com/gemhub/gemhub-core/providers/versioneer"
)

// Decision represents the outcome of a switch resolution.
type Decision int

const (
	// NoAction - the running version stays.
	NoAction Decision = iota
	// RestartOnly - the target version is already installed, relaunch directly.
	RestartOnly
	// InstallAndRestart - the target version must be installed before relaunch.
	InstallAndRestart
)

func (d Decision) String() string {
	switch d {
	case RestartOnly:
		return "restart"
	case InstallAndRestart:
		return "install and restart"
	default:
		return "no action"
	}
}

// InstalledLocator checks whether a specific tool version is installed locally.
type InstalledLocator interface {
	FindInstalled(name, version string) (*installers.InstalledGem, bool)
}

// SelfManager composes resolution, installation and relaunch into the public
// version-switching workflows. Each workflow either ends in a terminal
// relaunch or leaves the process running under its current version; a failed
// installation degrades to the latter and is never fatal.
type SelfManager struct {
	gemName    string
	resolver   *Resolver
	installer  installers.Installer
	locator    InstalledLocator
	relauncher Relauncher
	logger     *log.Logger
}

// NewSelfManager constructs a SelfManager from its collaborators.
// If 'logger' parameter is nil - log.Default() will be used instead.
func NewSelfManager(gemName string, resolver *Resolver, installer installers.Installer, locator InstalledLocator, relauncher Relauncher, logger *log.Logger) *SelfManager {
	if logger == nil {
		logger = log.Default()
	}
	return &SelfManager{
		gemName:    gemName,
		resolver:   resolver,
		installer:  installer,
		locator:    locator,
		relauncher: relauncher,
		logger:     logger,
	}
}

// NewDefaultSelfManager wires a SelfManager against the real host: the
// project's Gemfile.lock, the rubygems.org feed, the 'gem' executable and
// the running process. currentVersion is the version of the running tool.
func NewDefaultSelfManager(gemName, currentVersion string) (*SelfManager, error) {
	logger := log.Default()

	platform := NewHostPlatform("")
	dir, _ := platform.ProjectRoot()
	feed := NewRubyGemsFeed(rubygems.NewRubyGemsClient(nil, nil))

	resolver, err := NewResolver(gemName, currentVersion, NewFileSource(dir), feed, platform, logger)
	if err != nil {
		return nil, err
	}
	relauncher, err := NewSelfRelauncher(logger)
	if err != nil {
		return nil, err
	}

	return NewSelfManager(gemName, resolver, installers.NewGemInstaller(""), installers.NewLocator(), relauncher, logger), nil
}

// RestartWithLockedBundlerIfNeeded relaunches under the lockfile-recorded
// version when an auto-switch is due and that version is already installed
// locally. Installation is never attempted here.
func (m *SelfManager) RestartWithLockedBundlerIfNeeded(ctx context.Context) error {
	target, decision := m.lockedCandidate(ctx)
	if decision != RestartOnly {
		return nil
	}
	return m.relauncher.RelaunchWith(target.Value())
}

// InstallLockedBundlerAndRestartWithItIfNeeded installs the
// lockfile-recorded version when an auto-switch is due, then relaunches
// under it. An installation failure leaves the process running under the
// current version.
func (m *SelfManager) InstallLockedBundlerAndRestartWithItIfNeeded(ctx context.Context) error {
	if !m.resolver.NeedsAutoSwitch(ctx) {
		return nil
	}
	target := m.resolver.LockfileVersion(ctx)

	m.logger.Warnf("%s %s is running, but your lockfile was generated with %s %s. Installing %s %s and restarting using that version.",
		m.gemName, m.resolver.CurrentVersion().Value(), m.gemName, target.Value(), m.gemName, target.Value())

	return m.installThenRelaunch(ctx, target)
}

// UpdateBundlerAndRestartWithItIfNeeded resolves the target of an explicit
// update request against the published version feed, installs it and
// relaunches under it. An empty target means "latest release". A feed
// failure or an already-satisfied request resolves to no action.
func (m *SelfManager) UpdateBundlerAndRestartWithItIfNeeded(ctx context.Context, target string) error {
	if target == "" {
		target = ">= 0"
	}
	requirement, err := versioneer.NewGemConstraints(target)
	if err != nil {
		return err
	}

	resolved, err := m.resolver.ResolveForUpdate(ctx, requirement)
	if err != nil {
		m.logger.Debug("update resolution failed", "gem", m.gemName, "requirement", target, "err", err)
		return nil
	}
	if resolved == nil {
		m.logger.Debug("no update needed", "gem", m.gemName, "requirement", target)
		return nil
	}

	m.logger.Infof("Updating %s to %s and restarting using that version.", m.gemName, resolved.Value())

	return m.installThenRelaunch(ctx, resolved)
}

// lockedCandidate decides the auto-switch outcome for the restart-only path.
func (m *SelfManager) lockedCandidate(ctx context.Context) (versioneer.Version, Decision) {
	if !m.resolver.NeedsAutoSwitch(ctx) {
		return nil, NoAction
	}
	target := m.resolver.LockfileVersion(ctx)
	if _, ok := m.locator.FindInstalled(m.gemName, target.Value()); !ok {
		return nil, NoAction
	}
	return target, RestartOnly
}

// installThenRelaunch is the shared Installing -> Relaunching transition.
// An installation error degrades to continuing under the current version;
// a relaunch error propagates (there is no safe fallback once the switch
// was committed).
func (m *SelfManager) installThenRelaunch(ctx context.Context, target versioneer.Version) error {
	m.logger.Debug("switching versions", "gem", m.gemName, "version", target.Value(), "decision", InstallAndRestart)
	if err := m.installer.Install(ctx, m.gemName, target.Value()); err != nil {
		m.logger.Debug("installation failed", "gem", m.gemName, "version", target.Value(), "err", err)
		var installErr *installers.InstallError
		if errors.As(err, &installErr) && installErr.Output != "" {
			m.logger.Debug("installer output", "output", installErr.Output)
		}
		m.logger.Warnf("There was an error installing %s %s, the command will continue to run using %s %s.",
			m.gemName, target.Value(), m.gemName, m.resolver.CurrentVersion().Value())
		return nil
	}
	return m.relauncher.RelaunchWith(target.Value())
}

/*
Package installers provides installation and lookup of gem tool versions
through the host RubyGems toolchain.

Usage:
	todo:
*/
package installers

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Installer interface defines package installation methods.
type Installer interface {
	Install(ctx context.Context, name, version string) error
}

// InstallError represents a failed installation of one specific version.
type InstallError struct {
	Name    string
	Version string
	Output  string // combined stdout/stderr of the failed command
	Err     error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("unable to install %s %s: %v", e.Name, e.Version, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// NewGemInstaller constructs a GemInstaller.
// If 'gemBin' parameter is an empty string - 'gem' resolved via PATH will be used instead.
func NewGemInstaller(gemBin string) *GemInstaller {
	if gemBin == "" {
		gemBin = "gem"
	}
	return &GemInstaller{gemBin: gemBin}
}

// GemInstaller installs gem versions by shelling out to the 'gem' executable.
type GemInstaller struct {
	gemBin string

	// runCmd is replaced in tests to avoid spawning real processes.
	runCmd func(ctx context.Context, bin string, args ...string) ([]byte, error)
}

// Install runs 'gem install <name> -v <version> --no-document'. Any failure
// is returned as *InstallError; retry policy belongs to the caller.
func (gi *GemInstaller) Install(ctx context.Context, name, version string) error {
	run := gi.runCmd
	if run == nil {
		run = runGemCommand
	}

	out, err := run(ctx, gi.gemBin, "install", name, "-v", version, "--no-document")
	if err != nil {
		return &InstallError{Name: name, Version: version, Output: string(out), Err: err}
	}
	return nil
}

func runGemCommand(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	return cmd.CombinedOutput()
}

// InstalledGem represents one locally installed gem version.
type InstalledGem struct {
	Name     string
	Version  string
	SpecPath string
}

// Locator looks up locally installed gem versions by scanning the
// 'specifications' directories of the configured gem paths.
type Locator struct {
	Dirs []string
}

// NewLocator constructs a Locator over GEM_HOME and GEM_PATH.
func NewLocator() Locator {
	return Locator{Dirs: gemDirs()}
}

// FindInstalled returns information about the specified gem version if its
// gemspec is present in any configured gem path.
func (l Locator) FindInstalled(name, version string) (*InstalledGem, bool) {
	spec := fmt.Sprintf("%s-%s.gemspec", name, version)
	for _, dir := range l.Dirs {
		path := filepath.Join(dir, "specifications", spec)
		if _, err := os.Stat(path); err == nil {
			return &InstalledGem{Name: name, Version: version, SpecPath: path}, true
		}
	}
	return nil, false
}

// gemDirs collects candidate gem roots from GEM_HOME and GEM_PATH.
func gemDirs() []string {
	dirs := []string{}
	if home := os.Getenv("GEM_HOME"); home != "" {
		dirs = append(dirs, home)
	}
	for _, p := range strings.Split(os.Getenv("GEM_PATH"), string(os.PathListSeparator)) {
		if p != "" {
			dirs = append(dirs, p)
		}
	}
	return dirs
}

package gemhub

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Platform answers the host-capability questions version switching depends on.
type Platform interface {
	// SupportsVersionTrampolining reports whether the host toolchain can
	// install and re-launch under alternative tool versions.
	SupportsVersionTrampolining() bool
	// InProjectContext reports whether execution happens inside a project
	// that carries a Gemfile.
	InProjectContext() bool
}

// HostPlatform implements Platform against the real host: PATH probing for
// the gem executable and upward Gemfile discovery from a start directory.
type HostPlatform struct {
	Dir string // start directory; empty means the process working directory

	// lookPath is replaced in tests.
	lookPath func(file string) (string, error)
}

// NewHostPlatform constructs a HostPlatform rooted at the specified directory.
func NewHostPlatform(dir string) *HostPlatform {
	return &HostPlatform{Dir: dir}
}

// SupportsVersionTrampolining reports whether a 'gem' executable is reachable on PATH.
func (hp *HostPlatform) SupportsVersionTrampolining() bool {
	look := hp.lookPath
	if look == nil {
		look = exec.LookPath
	}
	_, err := look("gem")
	return err == nil
}

// InProjectContext walks upward from the start directory looking for a Gemfile.
func (hp *HostPlatform) InProjectContext() bool {
	_, ok := hp.ProjectRoot()
	return ok
}

// ProjectRoot returns the closest ancestor directory containing a Gemfile.
func (hp *HostPlatform) ProjectRoot() (string, bool) {
	dir := hp.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		dir = wd
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "Gemfile")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

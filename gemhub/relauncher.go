package gemhub

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Relauncher re-executes the current process pinned to a target version.
type Relauncher interface {
	// RelaunchWith never returns on success: the process image is replaced
	// by a fresh invocation of the same program and original arguments.
	// A returned error is always a fatal *RelaunchError.
	RelaunchWith(version string) error
}

// SelfRelauncher implements Relauncher by replacing the current process image
// with the original executable and argument vector under a rebuilt
// environment (see BuildChildEnvironment).
type SelfRelauncher struct {
	execPath string
	argv     []string
	logger   *log.Logger

	// environ and execFn are replaced in tests.
	environ func() []string
	execFn  func(argv0 string, argv []string, envv []string) error
}

// NewSelfRelauncher constructs a SelfRelauncher for the running executable
// and its original arguments. If 'logger' parameter is nil - log.Default()
// will be used instead.
func NewSelfRelauncher(logger *log.Logger) (*SelfRelauncher, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("unable to locate the running executable: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SelfRelauncher{
		execPath: execPath,
		argv:     os.Args,
		logger:   logger,
	}, nil
}

// RelaunchWith replaces the current process with the same program pinned to
// the specified version. The child environment restores any saved originals,
// re-asserts the gem location variables and pins the version marker so the
// child does not trampoline again.
func (sr *SelfRelauncher) RelaunchWith(version string) error {
	snapshot := CaptureEnvironment(sr.environ)
	child := BuildChildEnvironment(snapshot, version)

	sr.logger.Debug("re-launching under pinned version",
		"version", version, "exec", sr.execPath, "args", sr.argv)

	execFn := sr.execFn
	if execFn == nil {
		execFn = replaceProcess
	}
	// replaceProcess only returns control on failure.
	err := execFn(sr.execPath, sr.argv, child.Slice())
	if err == nil {
		err = fmt.Errorf("process replacement returned without error")
	}
	return &RelaunchError{Version: version, Err: err}
}

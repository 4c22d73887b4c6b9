//go:build windows

package gemhub

import (
	"os"
	"os/exec"
)

// replaceProcess emulates process replacement on Windows, which has no exec
// primitive: the child runs with inherited stdio and the parent exits with
// the child's status, so downstream code still observes a fresh start.
func replaceProcess(argv0 string, argv []string, envv []string) error {
	cmd := exec.Command(argv0, argv[1:]...)
	cmd.Env = envv
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return err
	}
	os.Exit(0)
	return nil
}

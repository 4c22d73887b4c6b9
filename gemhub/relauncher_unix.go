//go:build !windows

package gemhub

import "golang.org/x/sys/unix"

// replaceProcess swaps the current process image for argv0. On success it
// never returns.
func replaceProcess(argv0 string, argv []string, envv []string) error {
	return unix.Exec(argv0, argv, envv)
}

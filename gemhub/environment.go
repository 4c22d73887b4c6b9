package gemhub

import (
	"os"
	"sort"
	"strings"
)

// Environment variables the relaunch contract reads and writes.
const (
	// EnvLockedVersion pins a tool version for the whole process tree. The
	// relauncher sets it on the child so the child never trampolines again.
	EnvLockedVersion = "BUNDLER_VERSION"
	// EnvGemHome and EnvGemPath locate installed gems; they are re-asserted
	// explicitly on the child so they are never lost to default resolution.
	EnvGemHome = "GEM_HOME"
	EnvGemPath = "GEM_PATH"

	// savedEnvPrefix marks variables holding the pre-startup value of
	// another variable, saved by the host CLI before mutating it.
	savedEnvPrefix = "BUNDLER_ORIG_"
	// savedEnvNilSentinel as a saved value means the variable was originally
	// unset; it is the same wire format Bundler projects already use.
	savedEnvNilSentinel = "BUNDLER_ENVIRONMENT_PRESERVER_INTENTIONALLY_NIL"
)

// Environment is a process environment snapshot as a name/value map.
type Environment map[string]string

// CaptureEnvironment snapshots the current process environment.
// If 'environ' parameter is nil - os.Environ will be used instead.
func CaptureEnvironment(environ func() []string) Environment {
	if environ == nil {
		environ = os.Environ
	}
	env := Environment{}
	for _, entry := range environ() {
		idx := findEnvSeparator(entry)
		if idx == -1 {
			continue
		}
		env[entry[:idx]] = entry[idx+1:]
	}
	return env
}

// BuildChildEnvironment builds the environment a relaunched child must see
// from a snapshot of the parent's, applied in order (later wins):
//
//  1. The snapshot itself
//  2. Saved originals ('BUNDLER_ORIG_<NAME>'), undoing in-process mutations
//     made during the parent's startup; the nil sentinel deletes the variable
//  3. GEM_HOME/GEM_PATH re-asserted to their currently configured values
//  4. The locked-version pin for the target version
func BuildChildEnvironment(snapshot Environment, lockedVersion string) Environment {
	child := make(Environment, len(snapshot))
	for k, v := range snapshot {
		child[k] = v
	}

	// 2. Restore saved originals.
	for k, v := range snapshot {
		name := strings.TrimPrefix(k, savedEnvPrefix)
		if name == k || name == "" {
			continue
		}
		if v == savedEnvNilSentinel {
			delete(child, name)
			continue
		}
		child[name] = v
	}

	// 3. Gem location variables keep their configured values even when a
	// saved original disagrees.
	for _, name := range []string{EnvGemHome, EnvGemPath} {
		if v, ok := snapshot[name]; ok {
			child[name] = v
		}
	}

	// 4. Pin the target version.
	child[EnvLockedVersion] = lockedVersion

	return child
}

// Slice returns the environment as sorted 'KEY=VALUE' strings for exec.
func (e Environment) Slice() []string {
	entries := make([]string, 0, len(e))
	for k, v := range e {
		entries = append(entries, k+"="+v)
	}
	sort.Strings(entries)
	return entries
}

// findEnvSeparator locates the first '=' that splits name from value.
// Windows environments may carry entries starting with '=' - the name of a
// variable never does.
func findEnvSeparator(entry string) int {
	for i := 1; i < len(entry); i++ {
		if entry[i] == '=' {
			return i
		}
	}
	return -1
}

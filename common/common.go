package common

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	AppName = "xmexec"
)

// GetTmpDir returns the application scratch directory under the OS temp root.
func GetTmpDir() string {
	return filepath.Join(os.TempDir(), AppName)
}

// Structured log field names, consumed by the logger's ordered formatter.
const (
	ConnectionName = "Connection"
	RunnerName     = "Runner"
	SessionName    = "Session"
	CommandName    = "Command"
	LocalHostname  = "LocalHost"
)

const (
	// FileMode0755 represents rwxr-xr-x
	FileMode0755 fs.FileMode = 0755
	// FileMode0644 represents rw-r--r--
	FileMode0644 fs.FileMode = 0644
	// FileMode0600 represents rw-------
	FileMode0600 fs.FileMode = 0600
	// FileMode0700 represents rwx------
	FileMode0700 fs.FileMode = 0700
)

// RunnerKind identifies the mechanism a connection uses to execute commands.
type RunnerKind int

const (
	RunnerAuto     RunnerKind = iota // 0: let selection policy decide
	RunnerGeneric                    // 1: pass-through, no wrapper, pre-identity
	RunnerShell                      // 2: POSIX shell-out with optional wrapper
	RunnerScripted                   // 3: one scripting-host process per command
	RunnerSession                    // 4: persistent named-pipe session
)

func (k RunnerKind) String() string {
	switch k {
	case RunnerAuto:
		return "auto"
	case RunnerGeneric:
		return "generic"
	case RunnerShell:
		return "shell"
	case RunnerScripted:
		return "scripted"
	case RunnerSession:
		return "session"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseRunnerKind converts a user-supplied runner name (config file or CLI
// flag) into a RunnerKind. The empty string means automatic selection.
func ParseRunnerKind(name string) (RunnerKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return RunnerAuto, nil
	case "generic":
		return RunnerGeneric, nil
	case "shell":
		return RunnerShell, nil
	case "scripted":
		return RunnerScripted, nil
	case "session":
		return RunnerSession, nil
	default:
		return RunnerAuto, fmt.Errorf("unknown runner kind %q", name)
	}
}

const (
	NanosPerMicrosecond int64 = 1000
	NanosPerMillisecond int64 = 1000 * NanosPerMicrosecond
	NanosPerSecond      int64 = 1000 * NanosPerMillisecond
)

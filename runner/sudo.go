package runner

import (
	"strings"

	"github.com/mensylisir/xmexec/util"
)

// SudoWrapper rewrites commands to run under sudo through a bash subshell.
// The command is single-quote escaped so it survives the extra shell layer
// intact.
type SudoWrapper struct {
	// User runs the command as the named account instead of root.
	User string
	// PreserveEnv passes -E so the invoking environment survives the
	// privilege switch.
	PreserveEnv bool
}

var _ CmdWrapper = (*SudoWrapper)(nil)

func (w *SudoWrapper) Wrap(command string) string {
	parts := []string{"sudo"}
	if w.PreserveEnv {
		parts = append(parts, "-E")
	}
	if w.User != "" {
		parts = append(parts, "-u", util.EscapeShellArg(w.User))
	}
	parts = append(parts, "/bin/bash", "-c", util.EscapeShellArg(command))
	return strings.Join(parts, " ")
}

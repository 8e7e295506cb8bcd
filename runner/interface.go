package runner

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/executor"
)

// ErrSessionAcquisition reports that a persistent session could not be
// established, either because the server process failed to launch or
// because its pipe never became connectable within the retry budget.
// Callers match it with errors.Is and may fall back to a per-command
// runner.
var ErrSessionAcquisition = errors.New("session could not be established")

// Runner executes command lines on the local machine and reports each
// outcome as a CommandResult. A connection binds exactly one Runner for
// its whole lifetime.
type Runner interface {
	// Run executes command and returns its captured output and exit
	// status. A command that runs and exits non-zero is a result, not an
	// error; Run returns an error only when no result can be produced.
	Run(ctx context.Context, command string) (*executor.CommandResult, error)

	// Kind reports the execution mechanism.
	Kind() common.RunnerKind

	// Close releases any resources the runner holds. Runners without
	// background state return nil.
	Close() error
}

// CmdWrapper rewrites a command line before execution, for example to
// route it through sudo. Wrap must be a pure transformation.
type CmdWrapper interface {
	Wrap(command string) string
}

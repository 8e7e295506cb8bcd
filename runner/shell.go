package runner

import (
	"context"

	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/executor"
)

// genericRunner hands commands to the invoker untouched. It serves a
// connection before the target platform is known, so it carries no wrapper
// and no platform-specific behavior.
type genericRunner struct {
	exec executor.Executor
}

var _ Runner = (*genericRunner)(nil)

// NewGenericRunner returns the pass-through runner used while the target
// platform is still undetermined.
func NewGenericRunner(exec executor.Executor) Runner {
	return &genericRunner{exec: exec}
}

func (r *genericRunner) Run(ctx context.Context, command string) (*executor.CommandResult, error) {
	return r.exec.Invoke(ctx, command)
}

func (r *genericRunner) Kind() common.RunnerKind { return common.RunnerGeneric }

func (r *genericRunner) Close() error { return nil }

// shellRunner delegates to the invoker verbatim, optionally rewriting the
// command through a CmdWrapper first.
type shellRunner struct {
	exec    executor.Executor
	wrapper CmdWrapper
}

var _ Runner = (*shellRunner)(nil)

// NewShellRunner returns the shell-out runner. wrapper may be nil, in which
// case commands pass through unchanged.
func NewShellRunner(exec executor.Executor, wrapper CmdWrapper) Runner {
	return &shellRunner{exec: exec, wrapper: wrapper}
}

func (r *shellRunner) Run(ctx context.Context, command string) (*executor.CommandResult, error) {
	if r.wrapper != nil {
		command = r.wrapper.Wrap(command)
	}
	return r.exec.Invoke(ctx, command)
}

func (r *shellRunner) Kind() common.RunnerKind { return common.RunnerShell }

func (r *shellRunner) Close() error { return nil }

package runner

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmexec/codec"
	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/executor"
	"github.com/mensylisir/xmexec/platform"
)

// scriptedRunner executes every command in a fresh scripting-host process.
// The script travels as a base64 UTF-16LE -EncodedCommand argument, so no
// quoting or metacharacter handling survives to the command line.
type scriptedRunner struct {
	exec executor.Executor
	plat platform.Platform
}

var _ Runner = (*scriptedRunner)(nil)

// NewScriptedRunner returns the per-command scripting-host runner used when
// a persistent session is unavailable.
func NewScriptedRunner(exec executor.Executor, plat platform.Platform) Runner {
	return &scriptedRunner{exec: exec, plat: plat}
}

func (r *scriptedRunner) Run(ctx context.Context, command string) (*executor.CommandResult, error) {
	encoded, err := codec.Encode(command)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode command for the scripting host")
	}
	return r.exec.InvokeArgv(ctx, r.plat.PowerShell(),
		"-NoProfile", "-NonInteractive", "-EncodedCommand", encoded)
}

func (r *scriptedRunner) Kind() common.RunnerKind { return common.RunnerScripted }

func (r *scriptedRunner) Close() error { return nil }

package executor

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmexec/platform"
)

// shellMetaChars are the characters that force a command line through the
// platform shell. A line without any of them is split on whitespace and
// spawned directly.
const shellMetaChars = "&|;<>()$`\\\"'*?[]#~{}%\n"

// localExecutor implements the Executor interface for the local machine.
type localExecutor struct {
	plat platform.Platform
}

var _ Executor = (*localExecutor)(nil)

// NewLocalExecutor creates an Executor that spawns processes on the local
// machine. A nil platform defaults to the platform of the current process.
func NewLocalExecutor(plat platform.Platform) Executor {
	if plat == nil {
		plat = platform.Default()
	}
	return &localExecutor{plat: plat}
}

// needsShell reports whether commandLine relies on shell interpretation.
func needsShell(commandLine string) bool {
	return strings.ContainsAny(commandLine, shellMetaChars)
}

func (l *localExecutor) Invoke(ctx context.Context, commandLine string) (*CommandResult, error) {
	if strings.TrimSpace(commandLine) == "" {
		return nil, errors.New("empty command line")
	}

	var argv []string
	if needsShell(commandLine) {
		argv = l.plat.ShellCommand(commandLine)
	} else {
		argv = strings.Fields(commandLine)
	}
	return l.run(ctx, argv[0], argv[1:]...)
}

func (l *localExecutor) InvokeArgv(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("command name cannot be empty")
	}
	return l.run(ctx, name, args...)
}

func (l *localExecutor) run(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return &CommandResult{
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			ExitStatus: 0,
		}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errors.Wrapf(ctxErr, "command %q aborted", name)
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		return &CommandResult{
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			ExitStatus: exitErr.ExitCode(),
		}, nil
	}

	// The process never started: missing binary, permission denied, bad
	// working directory. This outcome is a failed command, not an error.
	return &CommandResult{
		Stdout:     "",
		Stderr:     "",
		ExitStatus: 1,
	}, nil
}

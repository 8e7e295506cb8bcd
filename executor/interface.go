package executor

import (
	"context"
)

// Executor runs a command line as a child process and reports the outcome.
type Executor interface {
	// Invoke spawns commandLine, waits for it to finish, and returns the
	// captured streams with the exit status. A command that starts but
	// exits non-zero is a result, not an error; Invoke returns an error
	// only when the outcome of the command cannot be represented at all,
	// such as an empty command line or a cancelled context.
	Invoke(ctx context.Context, commandLine string) (*CommandResult, error)

	// InvokeArgv spawns name with args exactly as given, with no shell
	// feature detection and no word splitting. Error semantics match
	// Invoke.
	InvokeArgv(ctx context.Context, name string, args ...string) (*CommandResult, error)
}

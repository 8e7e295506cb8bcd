package connector

import (
	"context"

	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/executor"
)

// Connection is an established transport to the target machine. Exactly
// one runner is bound to it for its whole lifetime.
type Connection interface {
	// RunCommand executes command on the target and reports the outcome.
	// A non-zero exit status is a result, not an error.
	RunCommand(ctx context.Context, command string) (*executor.CommandResult, error)

	// RunnerKind reports which execution mechanism the connection bound.
	RunnerKind() common.RunnerKind

	// Name identifies the connection in logs and pools.
	Name() string

	// Close tears the transport down, including any session server it
	// owns. Close is idempotent.
	Close() error
}

// Connector dials connections for one transport scheme.
type Connector interface {
	Connect(ctx context.Context) (Connection, error)
}

package runner

import (
	"context"

	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/executor"
	"github.com/mensylisir/xmexec/logger"
	"github.com/mensylisir/xmexec/platform"
)

// sessionFactory builds the persistent-session runner. Tests swap it to
// avoid touching real pipes.
type sessionFactory func(ctx context.Context, plat platform.Platform, cfg SessionConfig) (Runner, error)

// Options carries the collaborators and knobs for runner selection.
type Options struct {
	// Wrapper, when non-nil, rewrites commands on the shell runner.
	Wrapper CmdWrapper
	// Session configures session acquisition on Windows targets.
	Session SessionConfig

	newSession sessionFactory
}

// SelectRunner picks the execution mechanism for the target platform. A
// nil platform yields the pass-through runner used before the target
// identity is known. Windows targets get a persistent session when one
// can be established and the per-command scripting host when acquisition
// fails; everything else gets the platform shell. The choice is made once
// per connection and stays bound to it.
func SelectRunner(ctx context.Context, exec executor.Executor, plat platform.Platform, opts Options) Runner {
	if plat == nil {
		return NewGenericRunner(exec)
	}
	if !plat.IsWindows() {
		return NewShellRunner(exec, opts.Wrapper)
	}

	newSession := opts.newSession
	if newSession == nil {
		newSession = NewSessionRunner
	}
	sess, err := newSession(ctx, plat, opts.Session)
	if err != nil {
		logger.Log.WarnfRunner(common.RunnerSession.String(), "falling back to the scripting host: %v", err)
		return NewScriptedRunner(exec, plat)
	}
	return sess
}

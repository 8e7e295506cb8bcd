package connector

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/executor"
	"github.com/mensylisir/xmexec/hook"
	"github.com/mensylisir/xmexec/logger"
	"github.com/mensylisir/xmexec/platform"
	"github.com/mensylisir/xmexec/runner"
	xmtime "github.com/mensylisir/xmexec/time"
	"github.com/mensylisir/xmexec/util"
)

// Config carries the options the local transport understands.
type Config struct {
	// Name identifies the connection in logs. Empty selects the local
	// hostname.
	Name string
	// Runner pins the execution mechanism instead of automatic selection.
	// A pinned session runner is strict: when acquisition fails the
	// connection fails instead of falling back.
	Runner common.RunnerKind
	// Sudo routes commands through sudo on shell targets.
	Sudo bool
	// SudoUser runs commands as the named account instead of root.
	SudoUser string
	// SudoPreserveEnv passes -E so the caller's environment survives the
	// privilege switch.
	SudoPreserveEnv bool
	// Session tunes session acquisition on Windows targets.
	Session runner.SessionConfig
	// Platform overrides target identity detection. Nil means detect.
	Platform platform.Platform
}

func validateConfig(cfg Config) (Config, error) {
	if cfg.Name == "" {
		hostname, _ := os.Hostname()
		cfg.Name = util.FirstNonEmpty(hostname, "localhost")
	}
	switch cfg.Runner {
	case common.RunnerAuto, common.RunnerGeneric, common.RunnerShell, common.RunnerScripted, common.RunnerSession:
	default:
		return cfg, errors.Errorf("unknown runner kind %q", cfg.Runner)
	}
	if cfg.Platform == nil {
		cfg.Platform = platform.Default()
	}
	return cfg, nil
}

var _ Connection = (*localConnection)(nil)

// localConnection executes commands on the machine the process runs on.
// The runner is selected once at connect time and stays bound until Close.
type localConnection struct {
	cfg  Config
	plat platform.Platform

	mu      sync.Mutex
	runner  runner.Runner
	cleanup hook.CleanupStack
	closed  bool
}

// NewLocalConnection builds a connection to the local machine and binds
// its runner.
func NewLocalConnection(ctx context.Context, cfg Config) (Connection, error) {
	cfg, err := validateConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate local transport options")
	}

	exec := executor.NewLocalExecutor(cfg.Platform)
	wrapper := buildWrapper(cfg)

	bound, err := bindRunner(ctx, cfg, exec, wrapper)
	if err != nil {
		return nil, err
	}

	conn := &localConnection{cfg: cfg, plat: cfg.Platform, runner: bound}
	conn.cleanup.Push("runner", bound.Close)

	logger.Log.InfofConnection(cfg.Name, "connected to %s, runner %s", cfg.Platform.Name(), bound.Kind())
	return conn, nil
}

func buildWrapper(cfg Config) runner.CmdWrapper {
	if !cfg.Sudo {
		return nil
	}
	if cfg.Platform.IsWindows() {
		logger.Log.DebugfConnection(cfg.Name, "sudo is not applicable on windows, ignoring")
		return nil
	}
	return &runner.SudoWrapper{User: cfg.SudoUser, PreserveEnv: cfg.SudoPreserveEnv}
}

func bindRunner(ctx context.Context, cfg Config, exec executor.Executor, wrapper runner.CmdWrapper) (runner.Runner, error) {
	switch cfg.Runner {
	case common.RunnerAuto:
		return runner.SelectRunner(ctx, exec, cfg.Platform, runner.Options{Wrapper: wrapper, Session: cfg.Session}), nil
	case common.RunnerGeneric:
		return runner.NewGenericRunner(exec), nil
	case common.RunnerShell:
		return runner.NewShellRunner(exec, wrapper), nil
	case common.RunnerScripted:
		return runner.NewScriptedRunner(exec, cfg.Platform), nil
	case common.RunnerSession:
		bound, err := runner.NewSessionRunner(ctx, cfg.Platform, cfg.Session)
		if err != nil {
			return nil, errors.Wrapf(err, "pinned session runner could not start for %s", cfg.Name)
		}
		return bound, nil
	default:
		return nil, errors.Errorf("unknown runner kind %q", cfg.Runner)
	}
}

func (c *localConnection) RunCommand(ctx context.Context, command string) (*executor.CommandResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.Errorf("connection %s is closed", c.cfg.Name)
	}
	bound := c.runner
	c.mu.Unlock()

	display := util.TruncateString(command, 96, "...")
	logger.Log.DebugfConnection(c.cfg.Name, "running: %s", display)

	start := time.Now()
	result, err := bound.Run(ctx, command)
	elapsed := xmtime.ShortDur(time.Since(start))
	if err != nil {
		logger.Log.ErrorfConnection(c.cfg.Name, err, "command failed after %s: %s", elapsed, display)
		return nil, err
	}
	logger.Log.DebugfConnection(c.cfg.Name, "finished in %s with exit status %d", elapsed, result.ExitStatus)
	return result, nil
}

func (c *localConnection) RunnerKind() common.RunnerKind {
	return c.runner.Kind()
}

func (c *localConnection) Name() string {
	return c.cfg.Name
}

func (c *localConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	logger.Log.InfofConnection(c.cfg.Name, "closing connection")
	return c.cleanup.Run()
}

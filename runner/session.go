package runner

import (
	"bufio"
	"context"
	"encoding/base64"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mensylisir/xmexec/codec"
	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/executor"
	"github.com/mensylisir/xmexec/logger"
	"github.com/mensylisir/xmexec/platform"
	"github.com/mensylisir/xmexec/util"
)

const (
	defaultAcquireRetries  = 100
	defaultAcquireInterval = 100 * time.Millisecond
	defaultReadTimeout     = 5 * time.Minute
)

// SessionConfig controls how a persistent session is established and how
// long the client waits on it.
type SessionConfig struct {
	// PipePrefix names the session pipe as <prefix>-<uuid>. Empty selects
	// the application name.
	PipePrefix string
	// AcquireRetries is how many times the client polls the pipe for
	// connectability after launching the server. Zero selects the default.
	AcquireRetries int
	// AcquireInterval is the pause between connectability polls. Zero
	// selects the default.
	AcquireInterval time.Duration
	// ReadTimeout bounds the wait for a response line. Zero selects the
	// default; a negative value removes the bound entirely.
	ReadTimeout time.Duration
	// ScriptDumpDir, when set, receives a copy of the generated server
	// script for troubleshooting.
	ScriptDumpDir string
}

func (cfg *SessionConfig) validate() error {
	if strings.TrimSpace(cfg.PipePrefix) == "" {
		cfg.PipePrefix = common.AppName
	}
	if cfg.AcquireRetries < 0 {
		return errors.Errorf("acquire retries cannot be negative: %d", cfg.AcquireRetries)
	}
	if cfg.AcquireRetries == 0 {
		cfg.AcquireRetries = defaultAcquireRetries
	}
	if cfg.AcquireInterval < 0 {
		return errors.Errorf("acquire interval cannot be negative: %s", cfg.AcquireInterval)
	}
	if cfg.AcquireInterval == 0 {
		cfg.AcquireInterval = defaultAcquireInterval
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	return nil
}

// serverHandle controls a launched session server process.
type serverHandle interface {
	Pid() int
	Kill() error
}

// launchFunc starts the detached server process for script and returns a
// handle to it.
type launchFunc func(ctx context.Context, plat platform.Platform, script string) (serverHandle, error)

// dialFunc connects to the session pipe, failing fast when the pipe is not
// yet listening so the acquire loop can retry.
type dialFunc func(pipeName string, timeout time.Duration) (net.Conn, error)

// sessionRunner talks to a detached scripting-host server over a named
// duplex pipe. The protocol is one line per request and one line per
// response, so exactly one command may be in flight; a mutex serializes
// callers. Any transport or protocol failure marks the session broken for
// good, the owning connection must tear it down and select anew.
type sessionRunner struct {
	cfg      SessionConfig
	pipeName string

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	server serverHandle
	broken bool
	closed bool
}

var _ Runner = (*sessionRunner)(nil)

// NewSessionRunner launches a detached pipe server and connects to it.
// Acquisition is bounded: the pipe is polled a fixed number of times at a
// fixed interval, and on exhaustion the server is killed and the call
// fails with ErrSessionAcquisition.
func NewSessionRunner(ctx context.Context, plat platform.Platform, cfg SessionConfig) (Runner, error) {
	return newSessionRunner(ctx, plat, cfg, launchServer, dialPipe)
}

func newSessionRunner(ctx context.Context, plat platform.Platform, cfg SessionConfig, launch launchFunc, dial dialFunc) (Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	pipeName := cfg.PipePrefix + "-" + uuid.New().String()

	script, err := buildServerScript(pipeName)
	if err != nil {
		return nil, err
	}
	if cfg.ScriptDumpDir != "" {
		dumpServerScript(cfg.ScriptDumpDir, pipeName, script)
	}

	logger.Log.DebugfSession(pipeName, "launching session server")
	server, err := launch(ctx, plat, script)
	if err != nil {
		return nil, errors.Wrapf(ErrSessionAcquisition, "failed to launch session server: %v", err)
	}

	conn, err := waitForPipe(ctx, pipeName, cfg, dial)
	if err != nil {
		if killErr := server.Kill(); killErr != nil {
			logger.Log.WarnfSession(pipeName, "failed to stop session server pid %d: %v", server.Pid(), killErr)
		}
		return nil, err
	}
	logger.Log.InfofSession(pipeName, "session established, server pid %d", server.Pid())

	return &sessionRunner{
		cfg:      cfg,
		pipeName: pipeName,
		conn:     conn,
		reader:   bufio.NewReader(conn),
		server:   server,
	}, nil
}

// waitForPipe polls the session pipe until it accepts a connection. The
// server needs startup time, so the first attempts are expected to fail.
func waitForPipe(ctx context.Context, pipeName string, cfg SessionConfig, dial dialFunc) (net.Conn, error) {
	for attempt := 1; attempt <= cfg.AcquireRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, errors.Wrapf(ErrSessionAcquisition, "aborted while waiting for pipe %s: %v", pipeName, ctx.Err())
			case <-time.After(cfg.AcquireInterval):
			}
		}
		conn, err := dial(pipeName, cfg.AcquireInterval)
		if err == nil {
			return conn, nil
		}
		logger.Log.TracefSession(pipeName, "pipe not ready, attempt %d/%d: %v", attempt, cfg.AcquireRetries, err)
	}
	return nil, errors.Wrapf(ErrSessionAcquisition, "pipe %s not connectable after %d attempts", pipeName, cfg.AcquireRetries)
}

func (r *sessionRunner) Run(ctx context.Context, command string) (*executor.CommandResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.Errorf("session %s is closed", r.pipeName)
	}
	if r.broken {
		return nil, errors.Errorf("session %s is broken and cannot accept commands", r.pipeName)
	}

	line, err := codec.EncodeLine(command)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode command for the session")
	}

	if _, err := io.WriteString(r.conn, line+"\n"); err != nil {
		r.broken = true
		return nil, errors.Wrapf(err, "failed to send command to session %s", r.pipeName)
	}

	reply, err := r.readReply(ctx)
	if err != nil {
		r.broken = true
		return nil, err
	}

	result, err := codec.DecodeResponse(reply)
	if err != nil {
		r.broken = true
		return nil, err
	}
	return result, nil
}

// readReply blocks for the single response line, bounded by the configured
// read timeout. A negative timeout waits forever.
func (r *sessionRunner) readReply(ctx context.Context) (string, error) {
	type readOutcome struct {
		line string
		err  error
	}
	outCh := make(chan readOutcome, 1)
	go func() {
		line, err := r.reader.ReadString('\n')
		outCh <- readOutcome{line: line, err: err}
	}()

	var deadline <-chan time.Time
	if r.cfg.ReadTimeout > 0 {
		timer := time.NewTimer(r.cfg.ReadTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case out := <-outCh:
		if out.err != nil {
			return "", errors.Wrapf(out.err, "failed to read reply from session %s", r.pipeName)
		}
		return strings.TrimRight(out.line, "\r\n"), nil
	case <-deadline:
		return "", errors.Wrapf(codec.ErrProtocol, "no reply from session %s within %s", r.pipeName, r.cfg.ReadTimeout)
	case <-ctx.Done():
		return "", errors.Wrapf(ctx.Err(), "aborted while waiting for session %s", r.pipeName)
	}
}

func (r *sessionRunner) Kind() common.RunnerKind { return common.RunnerSession }

// Close stops the session deterministically: the server loop is asked to
// exit, the pipe is closed, and the server process is killed so no
// listener outlives the session.
func (r *sessionRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	logger.Log.DebugfSession(r.pipeName, "closing session, stopping server pid %d", r.server.Pid())

	if !r.broken {
		exitLine := base64.StdEncoding.EncodeToString([]byte("exit"))
		if _, err := io.WriteString(r.conn, exitLine+"\n"); err != nil && !util.IsErrPipeClosed(err) {
			logger.Log.DebugfSession(r.pipeName, "exit request not delivered: %v", err)
		}
	}

	var errs []error
	if err := r.conn.Close(); err != nil && !util.IsErrPipeClosed(err) {
		errs = append(errs, errors.Wrapf(err, "failed to close pipe %s", r.pipeName))
	}
	if err := r.server.Kill(); err != nil {
		errs = append(errs, errors.Wrapf(err, "failed to stop session server pid %d", r.server.Pid()))
	}
	return util.CombineErrors(errs...)
}

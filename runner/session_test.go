package runner

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/xmexec/codec"
	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/platform"
)

type fakeServerHandle struct {
	pid    int
	killed int
}

func (h *fakeServerHandle) Pid() int    { return h.pid }
func (h *fakeServerHandle) Kill() error { h.killed++; return nil }

// fakeServer mirrors the scripting-host loop over an in-memory pipe: one
// base64 command line in, one reply line out. A reply of "" means stay
// silent, which is how the read-timeout paths are exercised.
type fakeServer struct {
	handle  *fakeServerHandle
	client  net.Conn
	gotExit chan struct{}

	mu       sync.Mutex
	commands []string
}

func newFakeServer(reply func(command string) string) *fakeServer {
	serverEnd, clientEnd := net.Pipe()
	fs := &fakeServer{
		handle:  &fakeServerHandle{pid: 4242},
		client:  clientEnd,
		gotExit: make(chan struct{}),
	}
	go fs.serve(serverEnd, reply)
	return fs
}

func (fs *fakeServer) serve(conn net.Conn, reply func(string) string) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(line))
		if err != nil {
			return
		}
		command := string(raw)
		if command == "exit" {
			close(fs.gotExit)
			return
		}
		fs.mu.Lock()
		fs.commands = append(fs.commands, command)
		fs.mu.Unlock()
		out := reply(command)
		if out == "" {
			continue
		}
		if _, err := io.WriteString(conn, out+"\n"); err != nil {
			return
		}
	}
}

func (fs *fakeServer) dial(string, time.Duration) (net.Conn, error) {
	return fs.client, nil
}

func (fs *fakeServer) launch(context.Context, platform.Platform, string) (serverHandle, error) {
	return fs.handle, nil
}

func (fs *fakeServer) commandCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.commands)
}

func encodeReply(stdout, stderr string, exitStatus int) string {
	payload, _ := json.Marshal(map[string]interface{}{
		"stdout":      stdout,
		"stderr":      stderr,
		"exit_status": exitStatus,
	})
	return base64.StdEncoding.EncodeToString(payload)
}

func fastSessionConfig() SessionConfig {
	return SessionConfig{AcquireRetries: 3, AcquireInterval: time.Millisecond}
}

func TestSessionConfigValidate(t *testing.T) {
	cfg := SessionConfig{}
	require.NoError(t, cfg.validate())
	assert.Equal(t, common.AppName, cfg.PipePrefix)
	assert.Equal(t, defaultAcquireRetries, cfg.AcquireRetries)
	assert.Equal(t, defaultAcquireInterval, cfg.AcquireInterval)
	assert.Equal(t, defaultReadTimeout, cfg.ReadTimeout)

	cfg = SessionConfig{PipePrefix: "probe", AcquireRetries: 7, AcquireInterval: time.Second, ReadTimeout: time.Minute}
	require.NoError(t, cfg.validate())
	assert.Equal(t, "probe", cfg.PipePrefix)
	assert.Equal(t, 7, cfg.AcquireRetries)
	assert.Equal(t, time.Second, cfg.AcquireInterval)
	assert.Equal(t, time.Minute, cfg.ReadTimeout)

	cfg = SessionConfig{ReadTimeout: -1}
	require.NoError(t, cfg.validate())
	assert.Equal(t, time.Duration(-1), cfg.ReadTimeout, "a negative read timeout means unbounded and must survive validation")

	cfg = SessionConfig{AcquireRetries: -1}
	assert.Error(t, cfg.validate())

	cfg = SessionConfig{AcquireInterval: -time.Second}
	assert.Error(t, cfg.validate())
}

func TestSessionRunnerCorrelatesSequentialCommands(t *testing.T) {
	fs := newFakeServer(func(command string) string {
		return encodeReply("ran:"+command, "", 0)
	})

	r, err := newSessionRunner(context.Background(), nil, fastSessionConfig(), fs.launch, fs.dial)
	require.NoError(t, err)
	assert.Equal(t, common.RunnerSession, r.Kind())

	first, err := r.Run(context.Background(), "echo one")
	require.NoError(t, err)
	assert.Equal(t, "ran:"+codec.QuietPreamble+"echo one", first.Stdout)
	assert.Equal(t, 0, first.ExitStatus)

	second, err := r.Run(context.Background(), "echo two")
	require.NoError(t, err)
	assert.Equal(t, "ran:"+codec.QuietPreamble+"echo two", second.Stdout)

	require.NoError(t, r.Close())
	select {
	case <-fs.gotExit:
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the exit request")
	}
	assert.Equal(t, 1, fs.handle.killed)

	// Closing again is a no-op.
	assert.NoError(t, r.Close())
	_, err = r.Run(context.Background(), "echo three")
	assert.Error(t, err)
}

func TestSessionRunnerReportsNonZeroExit(t *testing.T) {
	fs := newFakeServer(func(string) string {
		return encodeReply("", "no such file", 2)
	})

	r, err := newSessionRunner(context.Background(), nil, fastSessionConfig(), fs.launch, fs.dial)
	require.NoError(t, err)
	defer r.Close()

	result, err := r.Run(context.Background(), "Get-Content missing.txt")
	require.NoError(t, err)
	assert.Equal(t, "no such file", result.Stderr)
	assert.Equal(t, 2, result.ExitStatus)
	assert.False(t, result.Success())
}

func TestSessionAcquisitionFailureKillsServer(t *testing.T) {
	handle := &fakeServerHandle{pid: 99}
	launch := func(context.Context, platform.Platform, string) (serverHandle, error) {
		return handle, nil
	}
	dials := 0
	dial := func(string, time.Duration) (net.Conn, error) {
		dials++
		return nil, errors.New("pipe busy")
	}

	r, err := newSessionRunner(context.Background(), nil, SessionConfig{AcquireRetries: 5, AcquireInterval: time.Millisecond}, launch, dial)
	assert.Nil(t, r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionAcquisition))
	assert.Equal(t, 5, dials)
	assert.Equal(t, 1, handle.killed, "a server that never became reachable must not be left running")
}

func TestSessionAcquisitionPollsUntilReady(t *testing.T) {
	fs := newFakeServer(func(string) string { return "" })
	attempts := 0
	dial := func(name string, timeout time.Duration) (net.Conn, error) {
		attempts++
		if attempts <= 3 {
			return nil, errors.New("pipe not ready")
		}
		return fs.client, nil
	}

	r, err := newSessionRunner(context.Background(), nil, SessionConfig{AcquireRetries: 10, AcquireInterval: time.Millisecond}, fs.launch, dial)
	require.NoError(t, err)
	assert.Equal(t, 4, attempts)
	require.NoError(t, r.Close())
}

func TestSessionLaunchFailure(t *testing.T) {
	launch := func(context.Context, platform.Platform, string) (serverHandle, error) {
		return nil, errors.New("scripting host missing")
	}
	dial := func(string, time.Duration) (net.Conn, error) {
		t.Fatal("dial must not be attempted when the launch fails")
		return nil, nil
	}

	r, err := newSessionRunner(context.Background(), nil, fastSessionConfig(), launch, dial)
	assert.Nil(t, r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionAcquisition))
}

func TestSessionRunnerMalformedReplyBreaksSession(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not base64", "%%% garbage %%%"},
		{"unknown field", base64.StdEncoding.EncodeToString([]byte(`{"stdout":"","stderr":"","exit_status":0,"pid":12}`))},
		{"missing exit status", base64.StdEncoding.EncodeToString([]byte(`{"stdout":"","stderr":""}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeServer(func(string) string { return tt.reply })

			r, err := newSessionRunner(context.Background(), nil, fastSessionConfig(), fs.launch, fs.dial)
			require.NoError(t, err)
			defer r.Close()

			result, err := r.Run(context.Background(), "echo hi")
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, errors.Is(err, codec.ErrProtocol))

			// The session no longer trusts the stream.
			_, err = r.Run(context.Background(), "echo again")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "broken")
			assert.Equal(t, 1, fs.commandCount())
		})
	}
}

func TestSessionRunnerReadTimeout(t *testing.T) {
	fs := newFakeServer(func(string) string { return "" })

	cfg := fastSessionConfig()
	cfg.ReadTimeout = 50 * time.Millisecond
	r, err := newSessionRunner(context.Background(), nil, cfg, fs.launch, fs.dial)
	require.NoError(t, err)
	defer r.Close()

	result, err := r.Run(context.Background(), "Start-Sleep 60")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, codec.ErrProtocol))
	assert.Contains(t, err.Error(), "no reply")

	_, err = r.Run(context.Background(), "echo hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestSessionRunnerContextCancelDuringRead(t *testing.T) {
	fs := newFakeServer(func(string) string { return "" })

	r, err := newSessionRunner(context.Background(), nil, fastSessionConfig(), fs.launch, fs.dial)
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = r.Run(ctx, "Start-Sleep 60")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSessionRunnerContextCancelDuringAcquire(t *testing.T) {
	handle := &fakeServerHandle{pid: 7}
	launch := func(context.Context, platform.Platform, string) (serverHandle, error) {
		return handle, nil
	}
	dial := func(string, time.Duration) (net.Conn, error) {
		return nil, errors.New("pipe not ready")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := newSessionRunner(ctx, nil, SessionConfig{AcquireRetries: 50, AcquireInterval: 10 * time.Millisecond}, launch, dial)
	assert.Nil(t, r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionAcquisition))
	assert.Equal(t, 1, handle.killed)
}

func TestNewSessionRunnerUnsupportedPlatform(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("launching a real session server is not exercised here")
	}

	r, err := NewSessionRunner(context.Background(), platform.Static("windows"), fastSessionConfig())
	assert.Nil(t, r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionAcquisition))
}

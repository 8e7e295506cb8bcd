package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/executor"
)

// fakeExecutor records the last invocation and plays back a canned result.
type fakeExecutor struct {
	lastCommand string
	lastName    string
	lastArgs    []string

	result *executor.CommandResult
	err    error
}

var _ executor.Executor = (*fakeExecutor)(nil)

func (f *fakeExecutor) Invoke(_ context.Context, commandLine string) (*executor.CommandResult, error) {
	f.lastCommand = commandLine
	return f.playback()
}

func (f *fakeExecutor) InvokeArgv(_ context.Context, name string, args ...string) (*executor.CommandResult, error) {
	f.lastName = name
	f.lastArgs = args
	return f.playback()
}

func (f *fakeExecutor) playback() (*executor.CommandResult, error) {
	if f.result == nil && f.err == nil {
		return &executor.CommandResult{}, nil
	}
	return f.result, f.err
}

// prefixWrapper prepends a fixed marker, enough to observe wrapper order.
type prefixWrapper struct{ prefix string }

func (w *prefixWrapper) Wrap(command string) string { return w.prefix + command }

func TestGenericRunnerPassesThrough(t *testing.T) {
	fake := &fakeExecutor{result: &executor.CommandResult{Stdout: "out"}}
	r := NewGenericRunner(fake)

	result, err := r.Run(context.Background(), "echo hi | grep h")
	require.NoError(t, err)
	assert.Equal(t, "echo hi | grep h", fake.lastCommand)
	assert.Equal(t, "out", result.Stdout)
	assert.Equal(t, common.RunnerGeneric, r.Kind())
	assert.NoError(t, r.Close())
}

func TestShellRunnerVerbatimWithoutWrapper(t *testing.T) {
	fake := &fakeExecutor{}
	r := NewShellRunner(fake, nil)

	_, err := r.Run(context.Background(), "ls -l /tmp")
	require.NoError(t, err)
	assert.Equal(t, "ls -l /tmp", fake.lastCommand)
}

func TestShellRunnerAppliesWrapper(t *testing.T) {
	fake := &fakeExecutor{}
	r := NewShellRunner(fake, &prefixWrapper{prefix: "nice -n 10 "})

	_, err := r.Run(context.Background(), "du -sh .")
	require.NoError(t, err)
	assert.Equal(t, "nice -n 10 du -sh .", fake.lastCommand)
	assert.Equal(t, common.RunnerShell, r.Kind())
	assert.NoError(t, r.Close())
}

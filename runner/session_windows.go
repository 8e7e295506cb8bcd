//go:build windows

package runner

import (
	"context"
	"net"
	"os"
	"os/exec"
	"syscall"
	"time"

	winio "github.com/Microsoft/go-winio"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/mensylisir/xmexec/codec"
	"github.com/mensylisir/xmexec/platform"
)

// pipeServerProcess wraps the detached scripting-host process that owns a
// session pipe.
type pipeServerProcess struct {
	proc *os.Process
}

var _ serverHandle = (*pipeServerProcess)(nil)

func (p *pipeServerProcess) Pid() int { return p.proc.Pid }

func (p *pipeServerProcess) Kill() error {
	err := p.proc.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	_, _ = p.proc.Wait()
	return nil
}

// launchServer starts the session server in its own process group with no
// console window, so it neither flashes UI nor dies with the client's
// console. The caller owns the returned handle and must Kill it.
func launchServer(ctx context.Context, plat platform.Platform, script string) (serverHandle, error) {
	encoded, err := codec.Encode(script)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(plat.PowerShell(),
		"-NoProfile", "-ExecutionPolicy", "Bypass", "-NonInteractive", "-EncodedCommand", encoded)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_NO_WINDOW,
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &pipeServerProcess{proc: cmd.Process}, nil
}

// dialPipe connects to the session pipe endpoint. The timeout keeps a
// not-yet-listening pipe from blocking the acquire loop.
func dialPipe(pipeName string, timeout time.Duration) (net.Conn, error) {
	return winio.DialPipe(`\\.\pipe\`+pipeName, &timeout)
}

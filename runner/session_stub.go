//go:build !windows

package runner

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmexec/platform"
)

// Session servers need the Windows named-pipe facility. On other systems
// these hooks fail fast, so runner selection falls through to the
// scripting host and tests drive the session logic through injected seams.

func launchServer(_ context.Context, _ platform.Platform, _ string) (serverHandle, error) {
	return nil, errors.New("session servers are only available on windows")
}

func dialPipe(pipeName string, _ time.Duration) (net.Conn, error) {
	return nil, errors.Errorf("cannot dial pipe %s: named pipes are only available on windows", pipeName)
}

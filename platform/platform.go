package platform

import (
	"os/exec"
	"runtime"
	"time"

	"github.com/mensylisir/xmexec/cache"
	"github.com/mensylisir/xmexec/util"
)

// Platform describes the host the connection targets and resolves the
// interpreters commands run under.
type Platform interface {
	// Name returns the GOOS-style platform name, e.g. "linux" or "windows".
	Name() string
	// IsWindows reports whether the platform is a Windows host.
	IsWindows() bool
	// ShellCommand returns the argv that runs command through the platform
	// shell, e.g. /bin/sh -c on Unix or cmd.exe /C on Windows.
	ShellCommand(command string) []string
	// PowerShell returns the PowerShell binary to invoke. pwsh is preferred
	// over powershell when both are installed; the bare name "powershell"
	// is returned when neither resolves so a spawn attempt can still fail
	// in the regular way.
	PowerShell() string
}

const (
	interpreterCacheKey = "powershell"
	interpreterCacheTTL = 10 * time.Minute

	fallbackInterpreter = "powershell"
	unixShell           = "/bin/sh"
	windowsShell        = "cmd.exe"
)

type detector struct {
	goos     string
	lookPath func(file string) (string, error)
	memo     *cache.Cache[string, string]
}

var _ Platform = (*detector)(nil)

// Default detects the platform of the current process.
func Default() Platform {
	return Static(runtime.GOOS)
}

// Static returns a Platform fixed to the given GOOS name. Interpreter
// resolution still consults the local PATH.
func Static(goos string) Platform {
	return &detector{
		goos:     goos,
		lookPath: exec.LookPath,
		// Re-resolve the interpreter after the TTL; expiry is handled
		// lazily on Get so no janitor goroutine is needed for one entry.
		memo: cache.NewCache[string, string](
			cache.WithDefaultTTL[string, string](interpreterCacheTTL),
			cache.WithJanitorInterval[string, string](0),
		),
	}
}

func (d *detector) Name() string {
	return d.goos
}

func (d *detector) IsWindows() bool {
	return d.goos == "windows"
}

func (d *detector) ShellCommand(command string) []string {
	if d.IsWindows() {
		return []string{util.GetenvOrDefault("COMSPEC", windowsShell), "/C", command}
	}
	return []string{unixShell, "-c", command}
}

func (d *detector) PowerShell() string {
	if path, ok := d.memo.Get(interpreterCacheKey); ok {
		return path
	}

	path := fallbackInterpreter
	for _, candidate := range []string{"pwsh", "powershell"} {
		if resolved, err := d.lookPath(candidate); err == nil {
			path = resolved
			break
		}
	}

	d.memo.Set(interpreterCacheKey, path)
	return path
}

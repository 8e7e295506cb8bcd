package runner

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/file"
	"github.com/mensylisir/xmexec/logger"
	"github.com/mensylisir/xmexec/util"
)

// serverScriptTemplate is the scripting-host program behind a session. It
// owns one named duplex pipe, waits for the single client, then serves a
// read-execute-respond loop: one base64 command line in, one base64(JSON)
// reply line out. The exit status is normalized to 0 when no native
// command set it, because the reply schema requires it.
const serverScriptTemplate = `$ErrorActionPreference = 'Stop'

$pipeServer = New-Object System.IO.Pipes.NamedPipeServerStream('{{ .PipeName }}')
$pipeReader = New-Object System.IO.StreamReader($pipeServer)
$pipeWriter = New-Object System.IO.StreamWriter($pipeServer)

$pipeServer.WaitForConnection()

$clientConnected = $true
while ($clientConnected) {
  $line = $pipeReader.ReadLine()
  if ($null -eq $line) { $clientConnected = $false; break }
  $command = [System.Text.Encoding]::UTF8.GetString([System.Convert]::FromBase64String($line))

  if ($command -eq 'exit') { $clientConnected = $false; break }

  $scriptBlock = [Scriptblock]::Create($command)
  $stdout = $null
  $stderr = $null
  try {
    $stdout = & $scriptBlock | Out-String
    $exitCode = $LastExitCode
  } catch {
    $stderr = $_.Exception.Message
    $exitCode = $LastExitCode
  }
  if ($null -eq $exitCode) { $exitCode = 0 }

  $reply = @{
    'stdout'      = "$stdout"
    'stderr'      = "$stderr"
    'exit_status' = $exitCode
  } | ConvertTo-Json -Compress

  $encoded = [System.Text.Encoding]::UTF8.GetBytes($reply)
  $pipeWriter.WriteLine([System.Convert]::ToBase64String($encoded))
  $pipeWriter.Flush()
}
$pipeServer.Dispose()
`

// buildServerScript renders the session server program for the given pipe
// name.
func buildServerScript(pipeName string) (string, error) {
	script, err := util.RenderString(serverScriptTemplate, util.Data{"PipeName": pipeName})
	if err != nil {
		return "", errors.Wrapf(err, "failed to render session server script for pipe %s", pipeName)
	}
	return script, nil
}

// dumpServerScript writes the rendered server script under dir for
// troubleshooting. The directory is kept private to the current user.
// Best effort, failures are logged and ignored.
func dumpServerScript(dir, pipeName, script string) {
	if err := os.MkdirAll(dir, common.FileMode0700); err != nil {
		logger.Log.WarnfSession(pipeName, "cannot create script dump directory %s: %v", dir, err)
		return
	}
	path := filepath.Join(dir, pipeName+".ps1")
	if err := file.WriteString(path, script, common.FileMode0600); err != nil {
		logger.Log.WarnfSession(pipeName, "cannot dump server script to %s: %v", path, err)
		return
	}
	logger.Log.DebugfSession(pipeName, "server script dumped to %s", path)
}

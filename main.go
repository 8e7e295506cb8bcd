package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/config"
	"github.com/mensylisir/xmexec/connector"
	"github.com/mensylisir/xmexec/executor"
	"github.com/mensylisir/xmexec/hook"
	"github.com/mensylisir/xmexec/logger"
	"github.com/mensylisir/xmexec/platform"
	xmtime "github.com/mensylisir/xmexec/time"
	"github.com/mensylisir/xmexec/util"
)

// version is stamped by -ldflags at release time.
var version = "dev"

var (
	flagConfig   string
	flagLogLevel string
	flagLogDir   string
	flagVerbose  bool

	flagName            string
	flagRunner          string
	flagSudo            bool
	flagSudoUser        string
	flagSudoPreserveEnv bool
	flagTimeout         time.Duration
	flagDumpScripts     bool

	commandExitStatus int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Log.Error(err)
		os.Exit(1)
	}
	os.Exit(commandExitStatus)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           common.AppName,
		Short:         "run commands through the local execution transport",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(flagLogLevel)
			if err != nil {
				logger.Log.Warnf("invalid log level '%s', defaulting to 'info': %v", flagLogLevel, err)
				level = logrus.InfoLevel
			}
			return logger.InitGlobalLogger(flagLogDir, flagVerbose, level)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to a Transport YAML document")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogDir, "log-dir", "", "write rotated logs under this directory instead of stdout")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [flags] -- command...",
		Short: "execute a command and exit with its exit status",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCommand,
	}

	runCmd.Flags().StringVar(&flagName, "name", "", "connection name used in log context")
	runCmd.Flags().StringVar(&flagRunner, "runner", "", "pin the runner: auto, generic, shell, scripted or session")
	runCmd.Flags().BoolVar(&flagSudo, "sudo", false, "wrap the command with sudo (shell targets only)")
	runCmd.Flags().StringVar(&flagSudoUser, "sudo-user", "", "run the command as this user via sudo")
	runCmd.Flags().BoolVar(&flagSudoPreserveEnv, "sudo-preserve-env", false, "pass -E to sudo")
	runCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "abort the command after this duration (0 means no limit)")
	runCmd.Flags().BoolVar(&flagDumpScripts, "dump-scripts", false, "keep generated session scripts under the scratch directory")
	return runCmd
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "connect with automatic selection and report what got bound",
		Args:  cobra.NoArgs,
		RunE:  detectTransport,
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", common.AppName, version)
		},
	}
}

// buildConnectorConfig merges the optional config file with the command
// line. Flags the user set win over the file.
func buildConnectorConfig(cmd *cobra.Command) (string, connector.Config, error) {
	backend := config.DefaultBackend
	var connCfg connector.Config

	if flagConfig != "" {
		loaded, err := config.LoadTransportConfig(flagConfig)
		if err != nil {
			return "", connector.Config{}, err
		}
		config.SetDefaultTransportSpec(&loaded.Spec)
		backend = loaded.Spec.Backend

		connCfg, err = loaded.ConnectorConfig()
		if err != nil {
			return "", connector.Config{}, err
		}
	}

	if cmd.Flags().Changed("name") {
		connCfg.Name = flagName
	}
	if cmd.Flags().Changed("runner") {
		kind, err := common.ParseRunnerKind(flagRunner)
		if err != nil {
			return "", connector.Config{}, err
		}
		connCfg.Runner = kind
	}
	if cmd.Flags().Changed("sudo") {
		connCfg.Sudo = flagSudo
	}
	if cmd.Flags().Changed("sudo-user") {
		connCfg.Sudo = true
		connCfg.SudoUser = flagSudoUser
	}
	if cmd.Flags().Changed("sudo-preserve-env") {
		connCfg.SudoPreserveEnv = flagSudoPreserveEnv
	}
	if flagDumpScripts && connCfg.Session.ScriptDumpDir == "" {
		connCfg.Session.ScriptDumpDir = filepath.Join(common.GetTmpDir(), "scripts")
	}

	return backend, connCfg, nil
}

// commandHook runs one command over an established connection and always
// tears the connection down afterwards.
type commandHook struct {
	ctx     context.Context
	conn    connector.Connection
	command string
	result  *executor.CommandResult
}

var _ hook.Interface = (*commandHook)(nil)

func (h *commandHook) Try() error {
	result, err := h.conn.RunCommand(h.ctx, h.command)
	if err != nil {
		return err
	}
	h.result = result
	return nil
}

func (h *commandHook) Catch(err error) error {
	return errors.Wrapf(err, "command failed on %s", h.conn.Name())
}

func (h *commandHook) Finally() {
	if err := h.conn.Close(); err != nil {
		logger.Log.Warnf("connection teardown reported: %v", err)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	backend, connCfg, err := buildConnectorConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if flagTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagTimeout)
		defer cancel()
	}

	transport, err := connector.Create(backend, connCfg)
	if err != nil {
		return err
	}

	start := time.Now()
	conn, err := transport.Connect(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to connect via %s transport", backend)
	}

	run := &commandHook{
		ctx:     ctx,
		conn:    conn,
		command: strings.Join(args, " "),
	}
	if err := hook.Call(run); err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, run.result.Stdout)
	fmt.Fprint(os.Stderr, run.result.Stderr)

	hostname, _ := os.Hostname()
	runLog := logger.Log.WithFields(logrus.Fields{
		common.LocalHostname: hostname,
		common.CommandName:   util.TruncateString(run.command, 96, "..."),
	})
	runLog.Debugf("run finished in %s with exit status %d", xmtime.ShortDurV2(time.Since(start)), run.result.ExitStatus)

	commandExitStatus = run.result.ExitStatus
	return nil
}

func detectTransport(cmd *cobra.Command, args []string) error {
	backend, connCfg, err := buildConnectorConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	transport, err := connector.Create(backend, connCfg)
	if err != nil {
		return err
	}
	conn, err := transport.Connect(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to connect via %s transport", backend)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Log.Warnf("connection teardown reported: %v", err)
		}
	}()

	plat := platform.Default()
	fmt.Printf("name:       %s\n", conn.Name())
	fmt.Printf("transport:  %s\n", backend)
	fmt.Printf("platform:   %s\n", plat.Name())
	fmt.Printf("windows:    %t\n", plat.IsWindows())
	fmt.Printf("shell:      %s\n", strings.Join(plat.ShellCommand("<command>"), " "))
	fmt.Printf("powershell: %s\n", plat.PowerShell())
	fmt.Printf("runner:     %s\n", conn.RunnerKind())
	return nil
}

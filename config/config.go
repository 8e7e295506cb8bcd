package config

import (
	"fmt"

	"github.com/mensylisir/xmexec/common"
	"github.com/mensylisir/xmexec/connector"
	"github.com/mensylisir/xmexec/runner"
	xmtime "github.com/mensylisir/xmexec/time"
)

// TransportConfig is the top-level configuration document.
type TransportConfig struct {
	APIVersion string        `yaml:"apiVersion"`
	Kind       string        `yaml:"kind"`
	Metadata   MetadataSpec  `yaml:"metadata"`
	Spec       TransportSpec `yaml:"spec"`
}

// MetadataSpec names the configured connection.
type MetadataSpec struct {
	Name string `yaml:"name"`
}

// TransportSpec selects the transport backend and its options.
type TransportSpec struct {
	// Backend names the registered transport, for example "local".
	Backend string `yaml:"backend,omitempty"`
	// Runner pins the execution mechanism: auto, generic, shell,
	// scripted or session.
	Runner  string       `yaml:"runner,omitempty"`
	Sudo    *SudoSpec    `yaml:"sudo,omitempty"`
	Session *SessionSpec `yaml:"session,omitempty"`
}

// SudoSpec routes commands through sudo on shell targets.
type SudoSpec struct {
	Enabled     bool   `yaml:"enabled"`
	User        string `yaml:"user,omitempty"`
	PreserveEnv bool   `yaml:"preserveEnv,omitempty"`
}

// SessionSpec tunes session acquisition on Windows targets. Durations are
// Go duration strings such as "100ms" or "5m".
type SessionSpec struct {
	PipePrefix      string `yaml:"pipePrefix,omitempty"`
	AcquireRetries  int    `yaml:"acquireRetries,omitempty"`
	AcquireInterval string `yaml:"acquireInterval,omitempty"`
	ReadTimeout     string `yaml:"readTimeout,omitempty"`
	ScriptDumpDir   string `yaml:"scriptDumpDir,omitempty"`
}

// ConnectorConfig converts the document into the connector options it
// describes, parsing runner names and durations.
func (c *TransportConfig) ConnectorConfig() (connector.Config, error) {
	kind, err := common.ParseRunnerKind(c.Spec.Runner)
	if err != nil {
		return connector.Config{}, fmt.Errorf("spec.runner: %w", err)
	}

	out := connector.Config{
		Name:   c.Metadata.Name,
		Runner: kind,
	}

	if c.Spec.Sudo != nil {
		out.Sudo = c.Spec.Sudo.Enabled
		out.SudoUser = c.Spec.Sudo.User
		out.SudoPreserveEnv = c.Spec.Sudo.PreserveEnv
	}

	if c.Spec.Session != nil {
		interval, err := xmtime.ParseDuration(c.Spec.Session.AcquireInterval, 0)
		if err != nil {
			return connector.Config{}, fmt.Errorf("spec.session.acquireInterval: %w", err)
		}
		readTimeout, err := xmtime.ParseDuration(c.Spec.Session.ReadTimeout, 0)
		if err != nil {
			return connector.Config{}, fmt.Errorf("spec.session.readTimeout: %w", err)
		}
		out.Session = runner.SessionConfig{
			PipePrefix:      c.Spec.Session.PipePrefix,
			AcquireRetries:  c.Spec.Session.AcquireRetries,
			AcquireInterval: interval,
			ReadTimeout:     readTimeout,
			ScriptDumpDir:   c.Spec.Session.ScriptDumpDir,
		}
	}

	return out, nil
}

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mensylisir/xmexec/file"
)

// LoadTransportConfig reads and validates the transport document at
// filePath.
func LoadTransportConfig(filePath string) (*TransportConfig, error) {
	return NewLoader(filePath).Load()
}

// Loader reads and structurally validates a TransportConfig file.
// Defaulting is handled separately by SetDefaultTransportSpec.
type Loader struct {
	filePath string
}

// NewLoader creates a configuration loader for the given file path.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads the configuration file, unmarshals it into a TransportConfig
// and checks the required fields.
func (l *Loader) Load() (*TransportConfig, error) {
	if l.filePath == "" {
		return nil, fmt.Errorf("configuration file path is empty")
	}
	content, err := file.ReadString(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", l.filePath, err)
	}

	if len(content) == 0 {
		return nil, fmt.Errorf("configuration file '%s' is empty", l.filePath)
	}

	var cfg TransportConfig
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML from '%s': %w", l.filePath, err)
	}

	if cfg.APIVersion == "" {
		return nil, fmt.Errorf("config validation failed: apiVersion is a required field in '%s'", l.filePath)
	}
	if cfg.Kind == "" {
		return nil, fmt.Errorf("config validation failed: kind is a required field in '%s'", l.filePath)
	}
	if cfg.Kind != KindTransport {
		return nil, fmt.Errorf("config validation failed: kind must be '%s' in '%s', got '%s'", KindTransport, l.filePath, cfg.Kind)
	}
	if cfg.Metadata.Name == "" {
		return nil, fmt.Errorf("config validation failed: metadata.name is a required field in '%s'", l.filePath)
	}

	return &cfg, nil
}

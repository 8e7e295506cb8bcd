package connector

import (
	"sync"

	"github.com/pkg/errors"
)

// TransportLocal is the registered name of the local transport.
const TransportLocal = "local"

// Factory builds a connector for one transport scheme.
type Factory func(cfg Config) (Connector, error)

var (
	defaultRegistry = make(map[string]Factory)
	registryMutex   = &sync.RWMutex{}
)

// Register adds a transport factory under name. Registering the same name
// twice is an error.
func Register(name string, factory Factory) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := defaultRegistry[name]; exists {
		return errors.Errorf("transport %q already registered", name)
	}
	defaultRegistry[name] = factory
	return nil
}

// Create builds a connector for the named transport.
func Create(name string, cfg Config) (Connector, error) {
	registryMutex.RLock()
	factory, exists := defaultRegistry[name]
	registryMutex.RUnlock()

	if !exists {
		return nil, errors.Errorf("transport %q not found in registry", name)
	}
	return factory(cfg)
}

// RegisteredTransportNames returns the names of all registered transports.
func RegisteredTransportNames() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	names := make([]string, 0, len(defaultRegistry))
	for name := range defaultRegistry {
		names = append(names, name)
	}
	return names
}

func init() {
	_ = Register(TransportLocal, func(cfg Config) (Connector, error) {
		return NewLocalConnector(cfg), nil
	})
}

package config

import (
	"github.com/mensylisir/xmexec/connector"
)

const (
	// DefaultAPIVersion is stamped on documents that omit apiVersion.
	DefaultAPIVersion = "transport.xiaoming.io/v1alpha1"
	// KindTransport is the only document kind the loader accepts.
	KindTransport = "Transport"

	DefaultBackend = connector.TransportLocal
	DefaultRunner  = "auto"

	DefaultAcquireRetries  = 100
	DefaultAcquireInterval = "100ms"
	DefaultReadTimeout     = "5m"
)

// SetDefaultTransportSpec fills the zero fields of spec in place and
// returns it. Fields the user set are left alone.
func SetDefaultTransportSpec(spec *TransportSpec) *TransportSpec {
	if spec == nil {
		return nil
	}
	if spec.Backend == "" {
		spec.Backend = DefaultBackend
	}
	if spec.Runner == "" {
		spec.Runner = DefaultRunner
	}
	if spec.Session == nil {
		spec.Session = &SessionSpec{}
	}
	SetDefaultSessionSpec(spec.Session)
	return spec
}

// SetDefaultSessionSpec fills the zero fields of spec in place and
// returns it.
func SetDefaultSessionSpec(spec *SessionSpec) *SessionSpec {
	if spec == nil {
		return nil
	}
	if spec.AcquireRetries == 0 {
		spec.AcquireRetries = DefaultAcquireRetries
	}
	if spec.AcquireInterval == "" {
		spec.AcquireInterval = DefaultAcquireInterval
	}
	if spec.ReadTimeout == "" {
		spec.ReadTimeout = DefaultReadTimeout
	}
	return spec
}

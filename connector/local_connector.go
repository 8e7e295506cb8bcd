package connector

import "context"

// localConnector dials connections to the machine the process runs on.
type localConnector struct {
	cfg Config
}

var _ Connector = (*localConnector)(nil)

// NewLocalConnector returns a Connector for the local transport.
func NewLocalConnector(cfg Config) Connector {
	return &localConnector{cfg: cfg}
}

func (l *localConnector) Connect(ctx context.Context) (Connection, error) {
	return NewLocalConnection(ctx, l.cfg)
}

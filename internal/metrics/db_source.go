package metrics

import (
	"context"

	"github.com/gaigenticai/regulens-autoscaler/pkg/database"
)

// DBConnectionsSource reports the number of connections currently in use
// by the application's database pool. A source failure here means the
// pool itself is gone, which the health check surfaces.
type DBConnectionsSource struct {
	name string
	db   *database.DB
}

func NewDBConnectionsSource(name string, db *database.DB) *DBConnectionsSource {
	if name == "" {
		name = "db_connections"
	}
	return &DBConnectionsSource{name: name, db: db}
}

func (s *DBConnectionsSource) Name() string {
	return s.name
}

func (s *DBConnectionsSource) Read(ctx context.Context) (float64, error) {
	return float64(s.db.GetConnectionStats().InUse), nil
}

func (s *DBConnectionsSource) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *DBConnectionsSource) Close() error {
	return nil
}

// Package mssql implements the plant-database repositories over the query
// execution façade. Statements are assembled with the trusted-identifier
// builder; request values only ever travel as named parameters.
package mssql

import (
	"fmt"
	"log/slog"

	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dbmanager"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

// BaseRepository carries the shared dependencies of every mssql repository.
type BaseRepository struct {
	exec     portssvc.QueryExecutor
	registry *siteregistry.Registry
	logger   *slog.Logger
}

// builderFor resolves the site's physical database and starts a statement
// builder scoped to it.
func (r *BaseRepository) builderFor(siteID string) (*dbmanager.Builder, error) {
	site, err := r.registry.Resolve(siteID)
	if err != nil {
		return nil, err
	}
	return dbmanager.NewBuilder(site.DatabaseName), nil
}

// rowString reads a column as a string, tolerating NULL.
func rowString(row map[string]any, col string) string {
	v, ok := row[col]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// rowInt64 reads a numeric column, tolerating the driver's integer widths.
func rowInt64(row map[string]any, col string) int64 {
	switch v := row[col].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

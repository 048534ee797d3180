package services

import (
	"context"
)

// QueryExecutor is the site-scoped execution façade repositories run their
// statements through. The networked implementation lives in
// internal/dbmanager; a rejecting implementation stands in when the process
// must not reach plant databases.
type QueryExecutor interface {
	// ExecuteQuery runs a SELECT and returns plain rows (column → value,
	// byte slices normalised to strings).
	ExecuteQuery(ctx context.Context, siteID, stmt string, args ...any) ([]map[string]any, error)

	// ExecuteNonQuery runs a mutation and returns the affected row count.
	ExecuteNonQuery(ctx context.Context, siteID, stmt string, args ...any) (int64, error)

	// ExecuteProcedure invokes a stored procedure.
	ExecuteProcedure(ctx context.Context, siteID, call string, args ...any) ([]map[string]any, error)
}

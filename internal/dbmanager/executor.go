package dbmanager

import (
	"context"
	"database/sql"
	"strings"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
)

// Row is a single result row keyed by column name, with driver byte slices
// already normalised to strings.
type Row = map[string]any

// ExecuteQuery runs a SELECT against the given site and returns plain rows.
// The statement must use @pN named placeholders; args are the matching
// sql.Named values.
func (m *Manager) ExecuteQuery(ctx context.Context, siteID, stmt string, args ...any) ([]Row, error) {
	db, err := m.PoolFor(ctx, siteID)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, queryFailed(siteID, stmt, err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, queryFailed(siteID, stmt, err)
	}
	return out, nil
}

// ExecuteNonQuery runs an INSERT/UPDATE/DELETE and returns the affected row
// count.
func (m *Manager) ExecuteNonQuery(ctx context.Context, siteID, stmt string, args ...any) (int64, error) {
	db, err := m.PoolFor(ctx, siteID)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, queryFailed(siteID, stmt, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, queryFailed(siteID, stmt, err)
	}
	return affected, nil
}

// ExecuteProcedure invokes a stored procedure by EXEC. Result rows, if the
// procedure produces any, are returned like a query.
func (m *Manager) ExecuteProcedure(ctx context.Context, siteID, call string, args ...any) ([]Row, error) {
	return m.ExecuteQuery(ctx, siteID, call, args...)
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0, 64)
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// queryFailed wraps a driver error with the site and a short statement
// digest. Bound values never appear in the digest.
func queryFailed(siteID, stmt string, err error) error {
	return &apperrors.QueryFailedError{SiteID: siteID, Digest: digest(stmt), Err: err}
}

const digestLimit = 80

func digest(stmt string) string {
	d := strings.Join(strings.Fields(stmt), " ")
	if len(d) > digestLimit {
		d = d[:digestLimit] + "..."
	}
	return d
}

// RejectingExecutor satisfies the query executor port but refuses every call.
// It is wired wherever direct database access must not happen, so a misrouted
// call fails loudly instead of silently reaching a plant database.
type RejectingExecutor struct{}

func (RejectingExecutor) ExecuteQuery(context.Context, string, string, ...any) ([]Row, error) {
	return nil, apperrors.ErrServerOnly
}

func (RejectingExecutor) ExecuteNonQuery(context.Context, string, string, ...any) (int64, error) {
	return 0, apperrors.ErrServerOnly
}

func (RejectingExecutor) ExecuteProcedure(context.Context, string, string, ...any) ([]Row, error) {
	return nil, apperrors.ErrServerOnly
}

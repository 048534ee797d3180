package mssql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	portsrepo "github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dbmanager"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

type SequenceRepository struct {
	BaseRepository
}

// NewSequenceRepository creates the repository for the sequence receive
// status inquiry and the work-instruction retry workflow.
func NewSequenceRepository(exec portssvc.QueryExecutor, registry *siteregistry.Registry, logger *slog.Logger) portsrepo.SequenceRepositoryFacade {
	return &SequenceRepository{BaseRepository{exec: exec, registry: registry, logger: logger}}
}

// Ensure implementation matches interface
var _ portsrepo.SequenceRepositoryFacade = (*SequenceRepository)(nil)

// sequenceConditions binds the shared search conditions. The fragments
// reference the A alias used by both UNION branches.
func sequenceConditions(b *dbmanager.Builder, f domain.SequenceFilter) dbmanager.Conditions {
	var c dbmanager.Conditions
	if f.DetailedSearch {
		if f.VinNo != "" {
			c.Addf("A.[VIN_NO] = %s", b.Bind(f.VinNo))
		}
		if f.BodyNo != "" {
			c.Addf("A.[BODY_NO] = %s", b.Bind(f.BodyNo))
		}
		return c
	}

	if f.StartDate != "" && f.EndDate != "" {
		// YYYY-MM-DD expands to the full day in PROD_DTTM precision.
		start := strings.ReplaceAll(f.StartDate, "-", "") + "000000"
		end := strings.ReplaceAll(f.EndDate, "-", "") + "235959"
		c.Addf("A.[PROD_DTTM] >= %s", b.Bind(start))
		c.Addf("A.[PROD_DTTM] <= %s", b.Bind(end))
	}
	if f.BodyType != "" {
		c.Addf("A.[BODY_TYPE] = %s", b.Bind(f.BodyType))
	}
	if f.CommitNoStart != "" && f.CommitNoEnd != "" {
		c.Addf("A.[COMMIT_NO] >= %s", b.Bind(f.CommitNoStart))
		c.Addf("A.[COMMIT_NO] <= %s", b.Bind(f.CommitNoEnd))
	}
	return c
}

// combinedCTE renders the CombinedData CTE joining the live and backup
// receive tables. ASSEMBLY_COMPLETE derives from each table's matching work
// order set: complete means exactly two confirmed work orders.
func combinedCTE(b *dbmanager.Builder, where string) string {
	branch := func(dataTable, workOrderTable, source string) string {
		return fmt.Sprintf(`SELECT
  A.[PROD_DTTM], A.[COMMIT_NO], A.[BODY_NO], A.[BODY_TYPE],
  A.[ALC_FRONT], A.[ALC_REAR], A.[ACL_COLOR], A.[VIN_NO],
  A.[PROD_DATE], A.[EXT_COLOR], A.[WORK_FLAG],
  CASE WHEN (
    SELECT COUNT(*) FROM %s w
    WHERE w.[PROD_DTTM] = A.[PROD_DTTM] AND w.[RESULT_YN] = 'Y'
  ) = 2 THEN N'완료' ELSE N'미완료' END AS [ASSEMBLY_COMPLETE],
  '%s' AS DATA_SOURCE
FROM %s A
WHERE 1 = 1%s`, workOrderTable, source, dataTable, where)
	}

	return fmt.Sprintf("WITH CombinedData AS (\n%s\nUNION ALL\n%s\n)",
		branch(b.Table("TB_PP_RECEIVE_ALC2_DATA"), b.Table("TB_PP_WORK_ORDER_ALC"), "LIVE"),
		branch(b.Table("TB_PP_RECEIVE_ALC2_DATA_RAW"), b.Table("TB_PP_WORK_ORDER_ALC_RAW"), "BACKUP"))
}

// ListSequences retrieves one offset page ordered newest first.
func (r *SequenceRepository) ListSequences(ctx context.Context, siteID string, filter domain.SequenceFilter, offset, limit int) ([]domain.SequenceRecord, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return nil, err
	}

	c := sequenceConditions(b, filter)
	cte := combinedCTE(b, c.AndClause())
	stmt := fmt.Sprintf(`%s
SELECT * FROM CombinedData
ORDER BY [PROD_DTTM] DESC, [COMMIT_NO] DESC
OFFSET %s ROWS FETCH NEXT %s ROWS ONLY`,
		cte, b.Bind(offset), b.Bind(limit))
	if err := b.Err(); err != nil {
		return nil, err
	}

	rows, err := r.exec.ExecuteQuery(ctx, siteID, stmt, b.Args()...)
	if err != nil {
		return nil, err
	}
	return mapRowsToSequences(rows), nil
}

// CountSequences returns the combined row count for the filter. Both tables
// are counted directly; the work-order subquery only matters for display.
func (r *SequenceRepository) CountSequences(ctx context.Context, siteID string, filter domain.SequenceFilter) (int64, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return 0, err
	}

	c := sequenceConditions(b, filter)
	stmt := fmt.Sprintf(`SELECT
  (SELECT COUNT(*) FROM %s A WHERE 1 = 1%s) +
  (SELECT COUNT(*) FROM %s A WHERE 1 = 1%s) AS totalCount`,
		b.Table("TB_PP_RECEIVE_ALC2_DATA"), c.AndClause(),
		b.Table("TB_PP_RECEIVE_ALC2_DATA_RAW"), c.AndClause())
	if err := b.Err(); err != nil {
		return 0, err
	}

	rows, err := r.exec.ExecuteQuery(ctx, siteID, stmt, b.Args()...)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rowInt64(rows[0], "totalCount"), nil
}

// ListSequencesByCursor retrieves one keyset page relative to the cursor.
// Rows for the prev direction come back oldest first; the service reverses
// them for display.
func (r *SequenceRepository) ListSequencesByCursor(ctx context.Context, siteID string, filter domain.SequenceFilter, cursor *domain.SequenceCursor, direction portsrepo.CursorDirection, limit int) ([]domain.SequenceRecord, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return nil, err
	}

	c := sequenceConditions(b, filter)
	if cursor != nil {
		dttm := b.Bind(cursor.ProdDttm)
		commit := b.Bind(cursor.CommitNo)
		if direction == portsrepo.CursorPrev {
			c.Addf("(A.[PROD_DTTM] > %[1]s OR (A.[PROD_DTTM] = %[1]s AND A.[COMMIT_NO] > %[2]s))", dttm, commit)
		} else {
			c.Addf("(A.[PROD_DTTM] < %[1]s OR (A.[PROD_DTTM] = %[1]s AND A.[COMMIT_NO] < %[2]s))", dttm, commit)
		}
	}

	order := "[PROD_DTTM] DESC, [COMMIT_NO] DESC"
	if direction == portsrepo.CursorPrev {
		order = "[PROD_DTTM] ASC, [COMMIT_NO] ASC"
	}

	cte := combinedCTE(b, c.AndClause())
	stmt := fmt.Sprintf(`%s
SELECT TOP (%s) * FROM CombinedData
ORDER BY %s`, cte, b.Bind(limit), order)
	if err := b.Err(); err != nil {
		return nil, err
	}

	rows, err := r.exec.ExecuteQuery(ctx, siteID, stmt, b.Args()...)
	if err != nil {
		return nil, err
	}
	return mapRowsToSequences(rows), nil
}

// ListBodyTypes retrieves the distinct body types across both tables.
func (r *SequenceRepository) ListBodyTypes(ctx context.Context, siteID string) ([]string, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(`SELECT DISTINCT BODY_TYPE FROM (
  SELECT BODY_TYPE FROM %s
  UNION
  SELECT BODY_TYPE FROM %s
) T WHERE BODY_TYPE IS NOT NULL AND BODY_TYPE != '' ORDER BY BODY_TYPE`,
		b.Table("TB_PP_RECEIVE_ALC2_DATA"), b.Table("TB_PP_RECEIVE_ALC2_DATA_RAW"))
	if err := b.Err(); err != nil {
		return nil, err
	}

	rows, err := r.exec.ExecuteQuery(ctx, siteID, stmt)
	if err != nil {
		return nil, err
	}
	return columnValues(rows, "BODY_TYPE"), nil
}

// RetryWorkInstruction clears every derived artifact of one production
// timestamp and re-runs the work-order generation procedure. Statement order
// matters: child rows go before their parents, the flag reset precedes the
// procedure.
func (r *SequenceRepository) RetryWorkInstruction(ctx context.Context, siteID, prodDttm string) (domain.RetryOutcome, error) {
	outcome := domain.RetryOutcome{ProdDttm: prodDttm}

	steps := []struct {
		name  string
		table string
		where string
	}{
		{"delete lot tracking subitems", "TB_HKMC_LOT_TRACKING_SUBITEM", "PROD_DTTM = %s"},
		{"delete lot tracking", "TB_HKMC_LOT_TRACKING", "PROD_DTTM = %s"},
		{"delete work list", "TB_PP_WORK_LIST", "LEFT(WORK_ORDER_ID, 14) = %s"},
		{"delete work orders", "TB_PP_WORK_ORDER_ALC", "PROD_DTTM = %s"},
	}

	for _, step := range steps {
		b, err := r.builderFor(siteID)
		if err != nil {
			return outcome, err
		}
		stmt := fmt.Sprintf("DELETE FROM %s WHERE "+step.where, b.Table(step.table), b.Bind(prodDttm))
		if err := b.Err(); err != nil {
			return outcome, err
		}
		affected, err := r.exec.ExecuteNonQuery(ctx, siteID, stmt, b.Args()...)
		if err != nil {
			return outcome, err
		}
		outcome.Steps = append(outcome.Steps, domain.RetryStep{Name: step.name, RowsAffected: affected})
	}

	b, err := r.builderFor(siteID)
	if err != nil {
		return outcome, err
	}
	stmt := fmt.Sprintf("UPDATE %s SET WORK_FLAG = 'F' WHERE PROD_DTTM = %s",
		b.Table("TB_PP_RECEIVE_ALC2_DATA"), b.Bind(prodDttm))
	if err := b.Err(); err != nil {
		return outcome, err
	}
	affected, err := r.exec.ExecuteNonQuery(ctx, siteID, stmt, b.Args()...)
	if err != nil {
		return outcome, err
	}
	outcome.Steps = append(outcome.Steps, domain.RetryStep{Name: "reset work flag", RowsAffected: affected})

	b, err = r.builderFor(siteID)
	if err != nil {
		return outcome, err
	}
	call := "EXEC " + b.Procedure("SP_PP_WORK_ORDER_ALC_C")
	if err := b.Err(); err != nil {
		return outcome, err
	}
	if _, err := r.exec.ExecuteProcedure(ctx, siteID, call); err != nil {
		return outcome, err
	}
	outcome.Steps = append(outcome.Steps, domain.RetryStep{Name: "run work order procedure"})

	r.logger.Info("work instruction retried",
		slog.String("site", siteID),
		slog.String("prod_dttm", prodDttm))
	return outcome, nil
}

func mapRowsToSequences(rows []map[string]any) []domain.SequenceRecord {
	records := make([]domain.SequenceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.SequenceRecord{
			ProdDttm:         rowString(row, "PROD_DTTM"),
			CommitNo:         rowString(row, "COMMIT_NO"),
			BodyNo:           rowString(row, "BODY_NO"),
			BodyType:         rowString(row, "BODY_TYPE"),
			AlcFront:         rowString(row, "ALC_FRONT"),
			AlcRear:          rowString(row, "ALC_REAR"),
			AclColor:         rowString(row, "ACL_COLOR"),
			VinNo:            rowString(row, "VIN_NO"),
			ProdDate:         rowString(row, "PROD_DATE"),
			ExtColor:         rowString(row, "EXT_COLOR"),
			WorkFlag:         rowString(row, "WORK_FLAG"),
			AssemblyComplete: rowString(row, "ASSEMBLY_COMPLETE"),
			DataSource:       rowString(row, "DATA_SOURCE"),
		})
	}
	return records
}

package mssql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	portsrepo "github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dbmanager"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

// specListLimit bounds the grid listing; the dashboard never renders more.
const specListLimit = 1000

// specColumns is the full column set of TB_MD_ALC_SPEC in table order.
var specColumns = []string{
	"CAR_TYPE", "LINE_ID", "ALC_CODE", "TYPE", "ITEM_CD", "BODY_TYPE",
	"ETC_TEXT01", "ETC_TEXT02", "ETC_TEXT03", "ETC_TEXT04",
	"ETC_TEXT05", "ETC_TEXT06", "ETC_TEXT07", "REMARK",
	"INUSER", "INDATE", "UPTUSER", "UPTDATE", "IS_USE", "GUBUN", "PLANT",
}

// updatableSpecColumns is the closed set of columns UpdateSpec may touch.
// UPTDATE is stamped automatically and never accepted from the caller.
var updatableSpecColumns = map[string]struct{}{
	"CAR_TYPE": {}, "LINE_ID": {}, "ALC_CODE": {}, "TYPE": {}, "ITEM_CD": {},
	"BODY_TYPE": {},
	"ETC_TEXT01": {}, "ETC_TEXT02": {}, "ETC_TEXT03": {}, "ETC_TEXT04": {},
	"ETC_TEXT05": {}, "ETC_TEXT06": {}, "ETC_TEXT07": {},
	"REMARK": {}, "INUSER": {}, "UPTUSER": {},
}

type SpecRepository struct {
	BaseRepository
}

// NewSpecRepository creates the repository for the ALC spec master table.
func NewSpecRepository(exec portssvc.QueryExecutor, registry *siteregistry.Registry, logger *slog.Logger) portsrepo.SpecRepositoryFacade {
	return &SpecRepository{BaseRepository{exec: exec, registry: registry, logger: logger}}
}

// Ensure implementation matches interface
var _ portsrepo.SpecRepositoryFacade = (*SpecRepository)(nil)

// ListSpecs retrieves spec records matching the filter, newest first.
func (r *SpecRepository) ListSpecs(ctx context.Context, siteID string, filter domain.SpecFilter) ([]domain.SpecRecord, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return nil, err
	}

	var c dbmanager.Conditions
	if filter.CarType != "" {
		c.Addf("CAR_TYPE = %s", b.Bind(filter.CarType))
	}
	if filter.LineID != "" {
		c.Addf("LINE_ID = %s", b.Bind(filter.LineID))
	}
	if filter.Type != "" {
		c.Addf("TYPE = %s", b.Bind(filter.Type))
	}
	if filter.Search != "" {
		p := b.Bind(filter.Search)
		c.Addf("(CAR_TYPE LIKE '%%' + %[1]s + '%%' OR ALC_CODE LIKE '%%' + %[1]s + '%%' OR ITEM_CD LIKE '%%' + %[1]s + '%%' OR TYPE LIKE '%%' + %[1]s + '%%')", p)
	}

	stmt := fmt.Sprintf(`SELECT TOP (%d) [%s] FROM %s WHERE 1 = 1%s ORDER BY INDATE DESC`,
		specListLimit,
		strings.Join(specColumns, "], ["),
		b.Table("TB_MD_ALC_SPEC"),
		c.AndClause())
	if err := b.Err(); err != nil {
		return nil, err
	}

	rows, err := r.exec.ExecuteQuery(ctx, siteID, stmt, b.Args()...)
	if err != nil {
		return nil, err
	}

	records := make([]domain.SpecRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapRowToSpec(row))
	}
	return records, nil
}

// SaveSpec inserts a new spec record. Audit columns default to SYSTEM and
// the current timestamp when absent.
func (r *SpecRepository) SaveSpec(ctx context.Context, siteID string, record domain.SpecRecord) error {
	b, err := r.builderFor(siteID)
	if err != nil {
		return err
	}

	now := timestampNow()
	if record.InUser == "" {
		record.InUser = "SYSTEM"
	}
	if record.UptUser == "" {
		record.UptUser = "SYSTEM"
	}
	if record.IsUse == "" {
		record.IsUse = "Y"
	}

	values := []string{
		b.Bind(record.CarType), b.Bind(record.LineID), b.Bind(record.AlcCode),
		b.Bind(record.Type), b.Bind(record.ItemCd), b.Bind(record.BodyType),
		b.Bind(record.EtcText01), b.Bind(record.EtcText02), b.Bind(record.EtcText03),
		b.Bind(record.EtcText04), b.Bind(record.EtcText05), b.Bind(record.EtcText06),
		b.Bind(record.EtcText07), b.Bind(record.Remark),
		b.Bind(record.InUser), b.Bind(now), b.Bind(record.UptUser), b.Bind(now),
		b.Bind(record.IsUse), b.Bind(record.Gubun), b.Bind(record.Plant),
	}

	stmt := fmt.Sprintf(`INSERT INTO %s ([%s]) VALUES (%s)`,
		b.Table("TB_MD_ALC_SPEC"),
		strings.Join(specColumns, "], ["),
		strings.Join(values, ", "))
	if err := b.Err(); err != nil {
		return err
	}

	_, err = r.exec.ExecuteNonQuery(ctx, siteID, stmt, b.Args()...)
	return err
}

// UpdateSpec applies the allow-listed field changes to the record identified
// by the original composite key. UPTDATE is always stamped.
func (r *SpecRepository) UpdateSpec(ctx context.Context, siteID string, key domain.SpecKey, fields map[string]string, updUser string) (int64, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return 0, err
	}

	assignments := make([]string, 0, len(fields)+2)
	for _, col := range specColumns { // table order keeps statements stable
		v, ok := fields[col]
		if !ok {
			continue
		}
		if _, allowed := updatableSpecColumns[col]; !allowed {
			return 0, fmt.Errorf("%w: column %q is not updatable", apperrors.ErrValidation, col)
		}
		assignments = append(assignments, fmt.Sprintf("[%s] = %s", col, b.Bind(v)))
	}
	if len(assignments) == 0 {
		return 0, fmt.Errorf("%w: no updatable fields in request", apperrors.ErrValidation)
	}
	if updUser != "" {
		assignments = append(assignments, fmt.Sprintf("[UPTUSER] = %s", b.Bind(updUser)))
	}
	assignments = append(assignments, fmt.Sprintf("[UPTDATE] = %s", b.Bind(timestampNow())))

	stmt := fmt.Sprintf(`UPDATE %s SET %s WHERE CAR_TYPE = %s AND LINE_ID = %s AND ALC_CODE = %s AND TYPE = %s AND ITEM_CD = %s`,
		b.Table("TB_MD_ALC_SPEC"),
		strings.Join(assignments, ", "),
		b.Bind(key.CarType), b.Bind(key.LineID), b.Bind(key.AlcCode), b.Bind(key.Type), b.Bind(key.ItemCd))
	if err := b.Err(); err != nil {
		return 0, err
	}

	return r.exec.ExecuteNonQuery(ctx, siteID, stmt, b.Args()...)
}

// DeleteSpec removes the record identified by the composite key.
func (r *SpecRepository) DeleteSpec(ctx context.Context, siteID string, key domain.SpecKey) (int64, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return 0, err
	}

	stmt := fmt.Sprintf(`DELETE FROM %s WHERE CAR_TYPE = %s AND LINE_ID = %s AND ALC_CODE = %s AND TYPE = %s AND ITEM_CD = %s`,
		b.Table("TB_MD_ALC_SPEC"),
		b.Bind(key.CarType), b.Bind(key.LineID), b.Bind(key.AlcCode), b.Bind(key.Type), b.Bind(key.ItemCd))
	if err := b.Err(); err != nil {
		return 0, err
	}

	return r.exec.ExecuteNonQuery(ctx, siteID, stmt, b.Args()...)
}

// ExistsByComposite reports whether a record with the 4-field combination
// exists, optionally excluding the record identified by all five key fields.
func (r *SpecRepository) ExistsByComposite(ctx context.Context, siteID, carType, typ, lineID, alcCode string, exclude *domain.SpecKey) (bool, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return false, err
	}

	var c dbmanager.Conditions
	c.Addf("CAR_TYPE = %s", b.Bind(carType))
	c.Addf("TYPE = %s", b.Bind(typ))
	c.Addf("LINE_ID = %s", b.Bind(lineID))
	c.Addf("ALC_CODE = %s", b.Bind(alcCode))
	addExclusion(b, &c, exclude)

	return r.countExists(ctx, siteID, b, c)
}

// ExistsByItemCd reports whether any record carries the item code.
func (r *SpecRepository) ExistsByItemCd(ctx context.Context, siteID, itemCd string, exclude *domain.SpecKey) (bool, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return false, err
	}

	var c dbmanager.Conditions
	c.Addf("ITEM_CD = %s", b.Bind(itemCd))
	addExclusion(b, &c, exclude)

	return r.countExists(ctx, siteID, b, c)
}

// addExclusion keeps the record being edited out of the duplicate count: a
// row only matches the exclusion when all five key fields line up.
func addExclusion(b *dbmanager.Builder, c *dbmanager.Conditions, exclude *domain.SpecKey) {
	if exclude == nil {
		return
	}
	c.Addf("NOT (CAR_TYPE = %s AND LINE_ID = %s AND ALC_CODE = %s AND TYPE = %s AND ITEM_CD = %s)",
		b.Bind(exclude.CarType), b.Bind(exclude.LineID), b.Bind(exclude.AlcCode),
		b.Bind(exclude.Type), b.Bind(exclude.ItemCd))
}

func (r *SpecRepository) countExists(ctx context.Context, siteID string, b *dbmanager.Builder, c dbmanager.Conditions) (bool, error) {
	stmt := fmt.Sprintf(`SELECT COUNT(*) AS cnt FROM %s %s`, b.Table("TB_MD_ALC_SPEC"), c.Clause())
	if err := b.Err(); err != nil {
		return false, err
	}

	rows, err := r.exec.ExecuteQuery(ctx, siteID, stmt, b.Args()...)
	if err != nil {
		return false, err
	}
	return len(rows) > 0 && rowInt64(rows[0], "cnt") > 0, nil
}

// ListCarTypes retrieves the car code master shaped for select boxes.
func (r *SpecRepository) ListCarTypes(ctx context.Context, siteID string) ([]domain.CarType, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(`SELECT CARCODE AS CODE, CARCODE + ' : ' + BODYTYPE + '(' + CARNAME + ')' AS LABEL FROM %s ORDER BY CARCODE`,
		b.Table("TB_MD_CARCODE"))
	if err := b.Err(); err != nil {
		return nil, err
	}

	rows, err := r.exec.ExecuteQuery(ctx, siteID, stmt)
	if err != nil {
		return nil, err
	}

	carTypes := make([]domain.CarType, 0, len(rows))
	for _, row := range rows {
		carTypes = append(carTypes, domain.CarType{
			Code:  rowString(row, "CODE"),
			Label: rowString(row, "LABEL"),
		})
	}
	return carTypes, nil
}

// CarTypeExists reports whether the car type is present in the car code
// master.
func (r *SpecRepository) CarTypeExists(ctx context.Context, siteID, carType string) (bool, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return false, err
	}

	stmt := fmt.Sprintf(`SELECT COUNT(*) AS cnt FROM %s WHERE CARCODE = %s`,
		b.Table("TB_MD_CARCODE"), b.Bind(carType))
	if err := b.Err(); err != nil {
		return false, err
	}

	rows, err := r.exec.ExecuteQuery(ctx, siteID, stmt, b.Args()...)
	if err != nil {
		return false, err
	}
	return len(rows) > 0 && rowInt64(rows[0], "cnt") > 0, nil
}

// ListLineIDs retrieves the distinct line identifiers in use.
func (r *SpecRepository) ListLineIDs(ctx context.Context, siteID string) ([]string, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(`SELECT DISTINCT LINE_ID FROM %s WHERE LINE_ID IS NOT NULL AND LINE_ID != '' ORDER BY LINE_ID`,
		b.Table("TB_MD_ALC_SPEC"))
	if err := b.Err(); err != nil {
		return nil, err
	}

	rows, err := r.exec.ExecuteQuery(ctx, siteID, stmt)
	if err != nil {
		return nil, err
	}
	return columnValues(rows, "LINE_ID"), nil
}

// ListWorkTypes retrieves the distinct work types for a car type.
func (r *SpecRepository) ListWorkTypes(ctx context.Context, siteID, carType string) ([]string, error) {
	b, err := r.builderFor(siteID)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf(`SELECT DISTINCT TYPE FROM %s WHERE CAR_TYPE = %s AND TYPE IS NOT NULL AND TYPE != '' ORDER BY TYPE`,
		b.Table("TB_MD_ALC_SPEC"), b.Bind(carType))
	if err := b.Err(); err != nil {
		return nil, err
	}

	rows, err := r.exec.ExecuteQuery(ctx, siteID, stmt, b.Args()...)
	if err != nil {
		return nil, err
	}
	return columnValues(rows, "TYPE"), nil
}

func columnValues(rows []map[string]any, col string) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if v := rowString(row, col); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func mapRowToSpec(row map[string]any) domain.SpecRecord {
	return domain.SpecRecord{
		SpecKey: domain.SpecKey{
			CarType: rowString(row, "CAR_TYPE"),
			LineID:  rowString(row, "LINE_ID"),
			AlcCode: rowString(row, "ALC_CODE"),
			Type:    rowString(row, "TYPE"),
			ItemCd:  rowString(row, "ITEM_CD"),
		},
		BodyType:  rowString(row, "BODY_TYPE"),
		EtcText01: rowString(row, "ETC_TEXT01"),
		EtcText02: rowString(row, "ETC_TEXT02"),
		EtcText03: rowString(row, "ETC_TEXT03"),
		EtcText04: rowString(row, "ETC_TEXT04"),
		EtcText05: rowString(row, "ETC_TEXT05"),
		EtcText06: rowString(row, "ETC_TEXT06"),
		EtcText07: rowString(row, "ETC_TEXT07"),
		Remark:    rowString(row, "REMARK"),
		InUser:    rowString(row, "INUSER"),
		InDate:    rowString(row, "INDATE"),
		UptUser:   rowString(row, "UPTUSER"),
		UptDate:   rowString(row, "UPTDATE"),
		IsUse:     rowString(row, "IS_USE"),
		Gubun:     rowString(row, "GUBUN"),
		Plant:     rowString(row, "PLANT"),
	}
}

// timestampNow renders the audit timestamp the way existing rows carry it.
func timestampNow() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	portsrepo "github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dto"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
)

// uploadRequiredFields must be present in every uploaded row.
var uploadRequiredFields = []string{"CAR_TYPE", "LINE_ID", "ALC_CODE", "TYPE", "ITEM_CD", "BODY_TYPE"}

type specService struct {
	repo     portsrepo.SpecRepositoryFacade
	registry *siteregistry.Registry
	logger   *slog.Logger
}

// NewSpecService creates the spec management service.
func NewSpecService(repo portsrepo.SpecRepositoryFacade, registry *siteregistry.Registry, logger *slog.Logger) portssvc.SpecSvcFacade {
	return &specService{repo: repo, registry: registry, logger: logger}
}

var _ portssvc.SpecSvcFacade = (*specService)(nil)

func (s *specService) ListSpecs(ctx context.Context, site string, filter domain.SpecFilter) ([]domain.SpecRecord, error) {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListSpecs(ctx, resolved.SiteID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list specs: %w", err)
	}
	if records == nil {
		records = []domain.SpecRecord{}
	}
	return records, nil
}

func (s *specService) CreateSpec(ctx context.Context, site string, req dto.CreateSpecRequest, creatorUserID string) error {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return err
	}

	dup, err := s.repo.ExistsByComposite(ctx, resolved.SiteID, req.CarType, req.Type, req.LineID, req.AlcCode, nil)
	if err != nil {
		return fmt.Errorf("failed to check duplicate before create: %w", err)
	}
	if dup {
		return fmt.Errorf("%w: combination (%s, %s, %s, %s) already exists",
			apperrors.ErrDuplicate, req.CarType, req.Type, req.LineID, req.AlcCode)
	}

	record := req.ToDomain()
	record.InUser = creatorUserID
	record.UptUser = creatorUserID

	if err := s.repo.SaveSpec(ctx, resolved.SiteID, record); err != nil {
		return fmt.Errorf("failed to create spec: %w", err)
	}

	s.logger.Info("spec created",
		slog.String("site", resolved.SiteID),
		slog.String("item_cd", record.ItemCd))
	return nil
}

func (s *specService) UpdateSpec(ctx context.Context, site string, req dto.UpdateSpecRequest, updaterUserID string) error {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return err
	}

	affected, err := s.repo.UpdateSpec(ctx, resolved.SiteID, req.OriginalKey.ToDomain(), req.UpdateData, updaterUserID)
	if err != nil {
		return fmt.Errorf("failed to update spec: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: spec record to update", apperrors.ErrNotFound)
	}

	s.logger.Info("spec updated",
		slog.String("site", resolved.SiteID),
		slog.String("item_cd", req.OriginalKey.ItemCd))
	return nil
}

// DeleteSpecs attempts every key and reports per-key outcomes; one bad key
// never aborts the rest.
func (s *specService) DeleteSpecs(ctx context.Context, site string, keys []domain.SpecKey) (domain.SpecDeleteOutcome, error) {
	var outcome domain.SpecDeleteOutcome

	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return outcome, err
	}

	for _, key := range keys {
		if !key.Complete() {
			outcome.Failed++
			outcome.Failures = append(outcome.Failures, domain.SpecDeleteFailure{
				Key: key, Reason: "incomplete key",
			})
			continue
		}
		affected, err := s.repo.DeleteSpec(ctx, resolved.SiteID, key)
		switch {
		case err != nil:
			s.logger.Error("spec delete failed",
				slog.String("site", resolved.SiteID),
				slog.String("item_cd", key.ItemCd),
				slog.String("error", err.Error()))
			outcome.Failed++
			outcome.Failures = append(outcome.Failures, domain.SpecDeleteFailure{
				Key: key, Reason: "delete failed",
			})
		case affected == 0:
			outcome.Failed++
			outcome.Failures = append(outcome.Failures, domain.SpecDeleteFailure{
				Key: key, Reason: "record not found",
			})
		default:
			outcome.Deleted++
		}
	}
	return outcome, nil
}

// UploadSpecs validates the parsed worksheet rows and, unless dryRun is set,
// inserts the rows that passed one by one with partial-success accounting.
// Rows with validation problems are skipped, never the whole batch.
// Validation reports every problem at once against 1-based worksheet row
// numbers (data starts at row 2).
func (s *specService) UploadSpecs(ctx context.Context, site string, rows []map[string]string, creatorUserID string, dryRun bool) (domain.UploadOutcome, error) {
	outcome := domain.UploadOutcome{TotalRows: len(rows)}

	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return outcome, err
	}
	if len(rows) == 0 {
		return outcome, fmt.Errorf("%w: no rows to upload", apperrors.ErrValidation)
	}

	// Pass 1: required fields per row.
	for i, row := range rows {
		var problems []string
		for _, field := range uploadRequiredFields {
			if row[field] == "" {
				problems = append(problems, fmt.Sprintf("%s is required", field))
			}
		}
		if len(problems) > 0 {
			outcome.RowErrors = append(outcome.RowErrors, domain.UploadRowError{Row: i + 2, Problems: problems})
		}
	}

	// Pass 2: car types must exist in the car code master.
	checkedCarTypes := make(map[string]bool)
	for i, row := range rows {
		carType := row["CAR_TYPE"]
		if carType == "" {
			continue
		}
		exists, seen := checkedCarTypes[carType]
		if !seen {
			exists, err = s.repo.CarTypeExists(ctx, resolved.SiteID, carType)
			if err != nil {
				return outcome, fmt.Errorf("failed to verify car type %s: %w", carType, err)
			}
			checkedCarTypes[carType] = exists
		}
		if !exists {
			outcome.RowErrors = append(outcome.RowErrors, domain.UploadRowError{
				Row: i + 2, Problems: []string{fmt.Sprintf("unknown CAR_TYPE %q", carType)},
			})
		}
	}

	// Pass 3: composite keys must not collide with existing records or
	// with earlier rows of the same worksheet.
	seenKeys := make(map[string]int)
	for i, row := range rows {
		carType, typ := row["CAR_TYPE"], row["TYPE"]
		lineID, alcCode := row["LINE_ID"], row["ALC_CODE"]
		if carType == "" || typ == "" || lineID == "" || alcCode == "" {
			continue
		}
		key := carType + "|" + typ + "|" + lineID + "|" + alcCode
		if firstRow, dup := seenKeys[key]; dup {
			outcome.RowErrors = append(outcome.RowErrors, domain.UploadRowError{
				Row: i + 2, Problems: []string{fmt.Sprintf("duplicates row %d in this file", firstRow)},
			})
			continue
		}
		seenKeys[key] = i + 2

		exists, err := s.repo.ExistsByComposite(ctx, resolved.SiteID, carType, typ, lineID, alcCode, nil)
		if err != nil {
			return outcome, fmt.Errorf("failed to check composite key: %w", err)
		}
		if exists {
			outcome.RowErrors = append(outcome.RowErrors, domain.UploadRowError{
				Row: i + 2, Problems: []string{"combination already exists"},
			})
		}
	}

	if dryRun {
		return outcome, nil
	}

	// Insert phase: partial success, per-row accounting. Rows rejected by
	// the validation passes are skipped; the rest are attempted.
	invalidRows := make(map[int]struct{}, len(outcome.RowErrors))
	for _, re := range outcome.RowErrors {
		invalidRows[re.Row] = struct{}{}
	}
	outcome.Skipped = len(invalidRows)

	for i, row := range rows {
		if _, bad := invalidRows[i+2]; bad {
			continue
		}
		record := specRecordFromRow(row)
		record.InUser = creatorUserID
		record.UptUser = creatorUserID
		if err := s.repo.SaveSpec(ctx, resolved.SiteID, record); err != nil {
			s.logger.Error("spec upload insert failed",
				slog.String("site", resolved.SiteID),
				slog.Int("row", i+2),
				slog.String("error", err.Error()))
			outcome.Skipped++
			outcome.RowErrors = append(outcome.RowErrors, domain.UploadRowError{
				Row: i + 2, Problems: []string{"insert failed"},
			})
			continue
		}
		outcome.Inserted++
	}

	s.logger.Info("spec upload finished",
		slog.String("site", resolved.SiteID),
		slog.Int("total", outcome.TotalRows),
		slog.Int("inserted", outcome.Inserted),
		slog.Int("skipped", outcome.Skipped))
	return outcome, nil
}

// specRecordFromRow maps a normalized worksheet row to a record, applying
// the upload defaults.
func specRecordFromRow(row map[string]string) domain.SpecRecord {
	valueOr := func(col, fallback string) string {
		if v := row[col]; v != "" {
			return v
		}
		return fallback
	}
	return domain.SpecRecord{
		SpecKey: domain.SpecKey{
			CarType: row["CAR_TYPE"],
			LineID:  row["LINE_ID"],
			AlcCode: row["ALC_CODE"],
			Type:    row["TYPE"],
			ItemCd:  row["ITEM_CD"],
		},
		BodyType:  row["BODY_TYPE"],
		EtcText01: row["ETC_TEXT01"],
		EtcText02: row["ETC_TEXT02"],
		EtcText03: row["ETC_TEXT03"],
		EtcText04: row["ETC_TEXT04"],
		EtcText05: row["ETC_TEXT05"],
		EtcText06: row["ETC_TEXT06"],
		EtcText07: row["ETC_TEXT07"],
		Remark:    row["REMARK"],
		IsUse:     valueOr("IS_USE", "Y"),
		Gubun:     valueOr("GUBUN", "1"),
		Plant:     valueOr("PLANT", "P01"),
	}
}

// CheckDuplicate runs the composite-key check when the 4-field combination
// is supplied, otherwise the single item-code check. CurrentData excludes
// the record being edited from the count.
func (s *specService) CheckDuplicate(ctx context.Context, site string, req dto.CheckDuplicateRequest) (bool, error) {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return false, err
	}

	var exclude *domain.SpecKey
	if req.CurrentData != nil {
		key := req.CurrentData.ToDomain()
		exclude = &key
	}

	switch {
	case req.CarType != "" && req.Type != "" && req.LineID != "" && req.AlcCode != "":
		return s.repo.ExistsByComposite(ctx, resolved.SiteID, req.CarType, req.Type, req.LineID, req.AlcCode, exclude)
	case req.ItemCd != "":
		return s.repo.ExistsByItemCd(ctx, resolved.SiteID, req.ItemCd, exclude)
	default:
		return false, fmt.Errorf("%w: either the 4-field combination or ITEM_CD is required", apperrors.ErrValidation)
	}
}

func (s *specService) ListCarTypes(ctx context.Context, site string) ([]domain.CarType, error) {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCarTypes(ctx, resolved.SiteID)
}

func (s *specService) ListLineIDs(ctx context.Context, site string) ([]string, error) {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLineIDs(ctx, resolved.SiteID)
}

func (s *specService) ListWorkTypes(ctx context.Context, site, carType string) ([]string, error) {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return nil, err
	}
	if carType == "" {
		return nil, fmt.Errorf("%w: carType is required", apperrors.ErrValidation)
	}
	return s.repo.ListWorkTypes(ctx, resolved.SiteID, carType)
}

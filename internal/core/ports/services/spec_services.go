package services

import (
	"context"

	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	"github.com/plakor-mes/assy-dashboard/internal/dto"
)

// SpecReaderSvc defines read operations for spec data. The site argument
// accepts a short code or a display name; resolution happens inside.
type SpecReaderSvc interface {
	// ListSpecs retrieves spec records matching the filter, newest first.
	ListSpecs(ctx context.Context, site string, filter domain.SpecFilter) ([]domain.SpecRecord, error)

	// CheckDuplicate runs the composite-key or item-code duplicate check.
	CheckDuplicate(ctx context.Context, site string, req dto.CheckDuplicateRequest) (bool, error)

	// ListCarTypes retrieves the car code master entries.
	ListCarTypes(ctx context.Context, site string) ([]domain.CarType, error)

	// ListLineIDs retrieves the distinct line identifiers in use.
	ListLineIDs(ctx context.Context, site string) ([]string, error)

	// ListWorkTypes retrieves the distinct work types for a car type.
	ListWorkTypes(ctx context.Context, site, carType string) ([]string, error)
}

// SpecWriterSvc defines write operations for spec data.
type SpecWriterSvc interface {
	// CreateSpec validates and inserts a new spec record.
	CreateSpec(ctx context.Context, site string, req dto.CreateSpecRequest, creatorUserID string) error

	// UpdateSpec applies allow-listed field changes to the record
	// identified by the original composite key.
	UpdateSpec(ctx context.Context, site string, req dto.UpdateSpecRequest, updaterUserID string) error

	// DeleteSpecs attempts every key and reports per-key outcomes.
	DeleteSpecs(ctx context.Context, site string, keys []domain.SpecKey) (domain.SpecDeleteOutcome, error)

	// UploadSpecs validates spreadsheet rows and, unless dryRun is set,
	// inserts the valid ones with partial-success accounting.
	UploadSpecs(ctx context.Context, site string, rows []map[string]string, creatorUserID string, dryRun bool) (domain.UploadOutcome, error)
}

// SpecSvcFacade combines all spec-related service interfaces.
type SpecSvcFacade interface {
	SpecReaderSvc
	SpecWriterSvc
}

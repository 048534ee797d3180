package repositories

import (
	"context"

	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

// SpecReader defines read operations over the ALC spec master table.
type SpecReader interface {
	// ListSpecs retrieves spec records matching the filter, newest first.
	ListSpecs(ctx context.Context, siteID string, filter domain.SpecFilter) ([]domain.SpecRecord, error)

	// ExistsByComposite reports whether a record with the given
	// (CAR_TYPE, TYPE, LINE_ID, ALC_CODE) combination exists. When exclude
	// is non-nil, the record matching all five key fields of exclude is
	// not counted (self-exclusion during edits).
	ExistsByComposite(ctx context.Context, siteID, carType, typ, lineID, alcCode string, exclude *domain.SpecKey) (bool, error)

	// ExistsByItemCd reports whether any record carries the item code.
	ExistsByItemCd(ctx context.Context, siteID, itemCd string, exclude *domain.SpecKey) (bool, error)

	// ListCarTypes retrieves the car code master entries.
	ListCarTypes(ctx context.Context, siteID string) ([]domain.CarType, error)

	// CarTypeExists reports whether the car type is present in the car
	// code master.
	CarTypeExists(ctx context.Context, siteID, carType string) (bool, error)

	// ListLineIDs retrieves the distinct line identifiers in use.
	ListLineIDs(ctx context.Context, siteID string) ([]string, error)

	// ListWorkTypes retrieves the distinct work types for a car type.
	ListWorkTypes(ctx context.Context, siteID, carType string) ([]string, error)
}

// SpecWriter defines write operations over the ALC spec master table.
type SpecWriter interface {
	// SaveSpec inserts a new spec record.
	SaveSpec(ctx context.Context, siteID string, record domain.SpecRecord) error

	// UpdateSpec updates the allow-listed fields of the record identified
	// by the original composite key. Returns the number of rows touched.
	UpdateSpec(ctx context.Context, siteID string, key domain.SpecKey, fields map[string]string, updUser string) (int64, error)

	// DeleteSpec removes the record identified by the composite key.
	// Returns the number of rows removed.
	DeleteSpec(ctx context.Context, siteID string, key domain.SpecKey) (int64, error)
}

// SpecRepositoryFacade combines all spec repository interfaces.
type SpecRepositoryFacade interface {
	SpecReader
	SpecWriter
}

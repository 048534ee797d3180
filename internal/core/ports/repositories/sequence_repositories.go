package repositories

import (
	"context"

	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

// CursorDirection selects which side of a keyset cursor a page is read from.
type CursorDirection string

const (
	CursorNext CursorDirection = "next"
	CursorPrev CursorDirection = "prev"
)

// SequenceReader defines read operations over the combined live and backup
// sequence receive tables.
type SequenceReader interface {
	// ListSequences retrieves one offset page, ordered by
	// (PROD_DTTM, COMMIT_NO) descending.
	ListSequences(ctx context.Context, siteID string, filter domain.SequenceFilter, offset, limit int) ([]domain.SequenceRecord, error)

	// CountSequences returns the total row count for the filter.
	CountSequences(ctx context.Context, siteID string, filter domain.SequenceFilter) (int64, error)

	// ListSequencesByCursor retrieves one keyset page relative to the
	// cursor position. A nil cursor starts from the newest row.
	ListSequencesByCursor(ctx context.Context, siteID string, filter domain.SequenceFilter, cursor *domain.SequenceCursor, direction CursorDirection, limit int) ([]domain.SequenceRecord, error)

	// ListBodyTypes retrieves the distinct body types across both tables.
	ListBodyTypes(ctx context.Context, siteID string) ([]string, error)
}

// WorkOrderWriter defines the work-instruction retry workflow.
type WorkOrderWriter interface {
	// RetryWorkInstruction clears the derived work-order and lot-tracking
	// rows for one PROD_DTTM, resets the work flag and re-runs the
	// work-order generation procedure.
	RetryWorkInstruction(ctx context.Context, siteID, prodDttm string) (domain.RetryOutcome, error)
}

// SequenceRepositoryFacade combines all sequence repository interfaces.
type SequenceRepositoryFacade interface {
	SequenceReader
	WorkOrderWriter
}

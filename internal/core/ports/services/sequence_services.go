package services

import (
	"context"

	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	"github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
)

// SequenceReaderSvc defines the sequence receive status inquiries.
type SequenceReaderSvc interface {
	// ListSequences retrieves one offset page. The total count is computed
	// on the first page only.
	ListSequences(ctx context.Context, site string, filter domain.SequenceFilter, page, pageSize int) (domain.SequencePage, error)

	// ListSequencesByCursor retrieves one keyset page. token is the opaque
	// cursor from a previous page, empty for the first.
	ListSequencesByCursor(ctx context.Context, site string, filter domain.SequenceFilter, token string, direction repositories.CursorDirection, pageSize int) (domain.SequenceCursorPage, error)

	// ExportSequences retrieves one export chunk. chunkSize is capped at
	// the export ceiling; the total count is computed on chunk 1 only.
	ExportSequences(ctx context.Context, site string, filter domain.SequenceFilter, chunk, chunkSize int) (domain.ExportChunk, error)

	// BuildExportFile renders the full filtered result set as an xlsx
	// workbook and returns its bytes.
	BuildExportFile(ctx context.Context, site string, filter domain.SequenceFilter) ([]byte, error)

	// ListBodyTypes retrieves the distinct body types across both tables.
	ListBodyTypes(ctx context.Context, site string) ([]string, error)
}

// SequenceWriterSvc defines the work-instruction retry workflow.
type SequenceWriterSvc interface {
	// RetryWorkInstruction re-runs work-order generation for one
	// production timestamp.
	RetryWorkInstruction(ctx context.Context, site, prodDttm string) (domain.RetryOutcome, error)
}

// SequenceSvcFacade combines all sequence-related service interfaces.
type SequenceSvcFacade interface {
	SequenceReaderSvc
	SequenceWriterSvc
}

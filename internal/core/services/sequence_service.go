package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	portsrepo "github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/siteregistry"
	"github.com/plakor-mes/assy-dashboard/internal/utils/excel"
	"github.com/plakor-mes/assy-dashboard/internal/utils/pagination"
)

// exportChunkCeiling caps one export round trip regardless of what the
// client asks for.
const exportChunkCeiling = 1000

type sequenceService struct {
	repo     portsrepo.SequenceRepositoryFacade
	registry *siteregistry.Registry
	logger   *slog.Logger
}

// NewSequenceService creates the sequence receive status service.
func NewSequenceService(repo portsrepo.SequenceRepositoryFacade, registry *siteregistry.Registry, logger *slog.Logger) portssvc.SequenceSvcFacade {
	return &sequenceService{repo: repo, registry: registry, logger: logger}
}

var _ portssvc.SequenceSvcFacade = (*sequenceService)(nil)

// ListSequences retrieves one offset page. The expensive total count runs on
// the first page only; later pages reuse the client's cached figure.
func (s *sequenceService) ListSequences(ctx context.Context, site string, filter domain.SequenceFilter, page, pageSize int) (domain.SequencePage, error) {
	result := domain.SequencePage{Page: page, PageSize: pageSize}

	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return result, err
	}

	offset := (page - 1) * pageSize
	records, err := s.repo.ListSequences(ctx, resolved.SiteID, filter, offset, pageSize)
	if err != nil {
		return result, fmt.Errorf("failed to list sequences: %w", err)
	}
	if records == nil {
		records = []domain.SequenceRecord{}
	}

	result.Records = records
	result.HasNextPage = len(records) == pageSize

	if page == 1 {
		total, err := s.repo.CountSequences(ctx, resolved.SiteID, filter)
		if err != nil {
			return result, fmt.Errorf("failed to count sequences: %w", err)
		}
		result.TotalCount = &total
	}
	return result, nil
}

// ListSequencesByCursor retrieves one keyset page. Prev pages come back from
// the repository oldest first and are flipped to display order here.
func (s *sequenceService) ListSequencesByCursor(ctx context.Context, site string, filter domain.SequenceFilter, token string, direction portsrepo.CursorDirection, pageSize int) (domain.SequenceCursorPage, error) {
	var result domain.SequenceCursorPage

	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return result, err
	}

	var cursor *domain.SequenceCursor
	if token != "" {
		decoded, err := pagination.DecodeCursor(token)
		if err != nil {
			return result, err
		}
		cursor = &decoded
	}

	records, err := s.repo.ListSequencesByCursor(ctx, resolved.SiteID, filter, cursor, direction, pageSize)
	if err != nil {
		return result, fmt.Errorf("failed to list sequences by cursor: %w", err)
	}

	result.HasMore = len(records) == pageSize
	if direction == portsrepo.CursorPrev {
		reverseRecords(records)
	}
	if records == nil {
		records = []domain.SequenceRecord{}
	}
	result.Records = records

	if len(records) > 0 {
		first, last := records[0], records[len(records)-1]
		result.PrevCursor = pagination.EncodeCursor(domain.SequenceCursor{ProdDttm: first.ProdDttm, CommitNo: first.CommitNo})
		result.NextCursor = pagination.EncodeCursor(domain.SequenceCursor{ProdDttm: last.ProdDttm, CommitNo: last.CommitNo})
	}
	return result, nil
}

func reverseRecords(records []domain.SequenceRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}

// ExportSequences retrieves one export chunk. Chunk sizes above the ceiling
// are clamped, never rejected.
func (s *sequenceService) ExportSequences(ctx context.Context, site string, filter domain.SequenceFilter, chunk, chunkSize int) (domain.ExportChunk, error) {
	if chunkSize > exportChunkCeiling {
		chunkSize = exportChunkCeiling
	}
	result := domain.ExportChunk{Chunk: chunk, ChunkSize: chunkSize}

	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return result, err
	}

	offset := (chunk - 1) * chunkSize
	records, err := s.repo.ListSequences(ctx, resolved.SiteID, filter, offset, chunkSize)
	if err != nil {
		return result, fmt.Errorf("failed to export sequences: %w", err)
	}
	if records == nil {
		records = []domain.SequenceRecord{}
	}

	result.Records = records
	result.HasMore = len(records) == chunkSize

	if chunk == 1 {
		total, err := s.repo.CountSequences(ctx, resolved.SiteID, filter)
		if err != nil {
			return result, fmt.Errorf("failed to count sequences for export: %w", err)
		}
		result.TotalCount = &total
	}
	return result, nil
}

// BuildExportFile drains the filtered result set chunk by chunk and renders
// a single workbook.
func (s *sequenceService) BuildExportFile(ctx context.Context, site string, filter domain.SequenceFilter) ([]byte, error) {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return nil, err
	}

	var all []domain.SequenceRecord
	for offset := 0; ; offset += exportChunkCeiling {
		records, err := s.repo.ListSequences(ctx, resolved.SiteID, filter, offset, exportChunkCeiling)
		if err != nil {
			return nil, fmt.Errorf("failed to collect export rows: %w", err)
		}
		all = append(all, records...)
		if len(records) < exportChunkCeiling {
			break
		}
	}

	s.logger.Info("export file built",
		slog.String("site", resolved.SiteID),
		slog.Int("rows", len(all)))
	return excel.BuildSequenceWorkbook(all)
}

func (s *sequenceService) ListBodyTypes(ctx context.Context, site string) ([]string, error) {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBodyTypes(ctx, resolved.SiteID)
}

func (s *sequenceService) RetryWorkInstruction(ctx context.Context, site, prodDttm string) (domain.RetryOutcome, error) {
	resolved, err := s.registry.Resolve(site)
	if err != nil {
		return domain.RetryOutcome{}, err
	}
	return s.repo.RetryWorkInstruction(ctx, resolved.SiteID, prodDttm)
}

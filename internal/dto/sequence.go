package dto

import (
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

// sequenceFilterParams are the search conditions shared by the list, cursor
// and export endpoints.
type sequenceFilterParams struct {
	DetailedSearch bool   `form:"detailedSearch"`
	StartDate      string `form:"startDate" binding:"omitempty,dateymd"`
	EndDate        string `form:"endDate" binding:"omitempty,dateymd"`
	BodyType       string `form:"bodyType"`
	CommitNoStart  string `form:"commitNoStart"`
	CommitNoEnd    string `form:"commitNoEnd"`
	VinNo          string `form:"vinNo"`
	BodyNo         string `form:"bodyNo"`
}

func (p sequenceFilterParams) toFilter() domain.SequenceFilter {
	return domain.SequenceFilter{
		DetailedSearch: p.DetailedSearch,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		BodyType:       normalizeAll(p.BodyType),
		CommitNoStart:  p.CommitNoStart,
		CommitNoEnd:    p.CommitNoEnd,
		VinNo:          p.VinNo,
		BodyNo:         p.BodyNo,
	}
}

// SequenceListParams defines query parameters for the offset-paginated list.
type SequenceListParams struct {
	Site     string `form:"site" binding:"required"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"pageSize,default=100" binding:"min=1,max=1000"`
	sequenceFilterParams
}

// ToFilter converts the query parameters to a domain filter.
func (p SequenceListParams) ToFilter() domain.SequenceFilter {
	return p.toFilter()
}

// SequenceCursorParams defines query parameters for the keyset-paginated
// list. Cursor is the opaque token from a previous page; empty means start.
type SequenceCursorParams struct {
	Site      string `form:"site" binding:"required"`
	Cursor    string `form:"cursor"`
	Direction string `form:"direction,default=next" binding:"oneof=next prev"`
	PageSize  int    `form:"pageSize,default=100" binding:"min=1,max=1000"`
	sequenceFilterParams
}

// ToFilter converts the query parameters to a domain filter.
func (p SequenceCursorParams) ToFilter() domain.SequenceFilter {
	return p.toFilter()
}

// SequenceExportParams defines query parameters for the chunked export and
// the file export.
type SequenceExportParams struct {
	Site      string `form:"site" binding:"required"`
	Chunk     int    `form:"chunk,default=1" binding:"min=1"`
	ChunkSize int    `form:"chunkSize,default=1000" binding:"min=1"`
	sequenceFilterParams
}

// ToFilter converts the query parameters to a domain filter.
func (p SequenceExportParams) ToFilter() domain.SequenceFilter {
	return p.toFilter()
}

// RetryWorkInstructionRequest keys the retry workflow by production
// timestamp (YYYYMMDDHHMMSS).
type RetryWorkInstructionRequest struct {
	ProdDttm string `json:"prodDttm" binding:"required,len=14,numeric"`
}

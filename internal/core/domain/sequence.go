package domain

// SequenceRecord is one row of the sequence receive status inquiry, combined
// from the live table (TB_PP_RECEIVE_ALC2_DATA) and its backup (_RAW).
type SequenceRecord struct {
	ProdDttm         string `json:"PROD_DTTM"`
	CommitNo         string `json:"COMMIT_NO"`
	BodyNo           string `json:"BODY_NO"`
	BodyType         string `json:"BODY_TYPE"`
	AlcFront         string `json:"ALC_FRONT"`
	AlcRear          string `json:"ALC_REAR"`
	AclColor         string `json:"ACL_COLOR"`
	VinNo            string `json:"VIN_NO"`
	ProdDate         string `json:"PROD_DATE"`
	ExtColor         string `json:"EXT_COLOR"`
	WorkFlag         string `json:"WORK_FLAG"`
	AssemblyComplete string `json:"ASSEMBLY_COMPLETE"` // "완료" when both work orders report RESULT_YN='Y'
	DataSource       string `json:"DATA_SOURCE"`       // "LIVE" or "BACKUP"
}

// SequenceFilter holds the search conditions shared by the list, cursor and
// export operations. Detailed search (VIN/body number) and period search are
// mutually exclusive modes.
type SequenceFilter struct {
	DetailedSearch bool
	StartDate      string // YYYY-MM-DD, expanded to PROD_DTTM >= YYYYMMDD000000
	EndDate        string // YYYY-MM-DD, expanded to PROD_DTTM <= YYYYMMDD235959
	BodyType       string
	CommitNoStart  string
	CommitNoEnd    string
	VinNo          string
	BodyNo         string
}

// SequenceCursor is a keyset position over (PROD_DTTM, COMMIT_NO).
type SequenceCursor struct {
	ProdDttm string `json:"prodDttm"`
	CommitNo string `json:"commitNo"`
}

// SequencePage is one offset-paginated result page. TotalCount is only
// computed for the first page; later pages leave it nil.
type SequencePage struct {
	Records     []SequenceRecord `json:"data"`
	TotalCount  *int64           `json:"totalCount,omitempty"`
	Page        int              `json:"page"`
	PageSize    int              `json:"pageSize"`
	HasNextPage bool             `json:"hasNextPage"`
}

// SequenceCursorPage is one keyset-paginated result page.
type SequenceCursorPage struct {
	Records    []SequenceRecord `json:"data"`
	NextCursor string           `json:"nextCursor,omitempty"`
	PrevCursor string           `json:"prevCursor,omitempty"`
	HasMore    bool             `json:"hasMore"`
}

// ExportChunk is one slice of a chunked export. TotalCount is only computed
// for the first chunk.
type ExportChunk struct {
	Records    []SequenceRecord `json:"data"`
	TotalCount *int64           `json:"totalCount,omitempty"`
	Chunk      int              `json:"chunk"`
	ChunkSize  int              `json:"chunkSize"`
	HasMore    bool             `json:"hasMore"`
}

// RetryStep records one statement of the work-instruction retry workflow.
type RetryStep struct {
	Name         string `json:"name"`
	RowsAffected int64  `json:"rowsAffected"`
}

// RetryOutcome reports the full retry workflow for one PROD_DTTM key.
type RetryOutcome struct {
	ProdDttm string      `json:"prodDttm"`
	Steps    []RetryStep `json:"steps"`
}

// Package excel handles the spreadsheet surfaces of the dashboard: parsing
// uploaded spec workbooks and building sequence export workbooks.
package excel

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

var etcTextPattern = regexp.MustCompile(`^(?:EXT|ETC)_TEXT(\d{1,2})$`)

// NormalizeHeader canonicalises a worksheet header: trimmed, uppercased,
// whitespace runs collapsed to underscores, and the EXT_TEXT/ETC_TEXT
// variants unified to the two-digit ETC_TEXT0d column names.
func NormalizeHeader(header string) string {
	key := strings.ToUpper(strings.TrimSpace(header))
	key = strings.Join(strings.Fields(key), "_")
	if m := etcTextPattern.FindStringSubmatch(key); m != nil {
		n, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("ETC_TEXT%02d", n)
	}
	return key
}

// ParseSpecSheet reads the first worksheet of an uploaded workbook into one
// map per data row, keyed by normalized header. Fully blank rows are
// dropped. A workbook without data rows is a validation error.
func ParseSpecSheet(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read workbook: %v", apperrors.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", apperrors.ErrValidation)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read sheet %s: %v", apperrors.ErrValidation, sheets[0], err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("%w: workbook has no data rows", apperrors.ErrValidation)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = NormalizeHeader(h)
	}

	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = strings.TrimSpace(row[i])
			} else {
				record[header] = ""
			}
		}
		out = append(out, record)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: workbook has no data rows", apperrors.ErrValidation)
	}
	return out, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sequenceExportColumns pairs workbook headers with record accessors, in
// the column order the dashboard grid shows.
var sequenceExportColumns = []struct {
	header string
	value  func(domain.SequenceRecord) string
}{
	{"PROD_DTTM", func(r domain.SequenceRecord) string { return r.ProdDttm }},
	{"COMMIT_NO", func(r domain.SequenceRecord) string { return r.CommitNo }},
	{"BODY_NO", func(r domain.SequenceRecord) string { return r.BodyNo }},
	{"BODY_TYPE", func(r domain.SequenceRecord) string { return r.BodyType }},
	{"ALC_FRONT", func(r domain.SequenceRecord) string { return r.AlcFront }},
	{"ALC_REAR", func(r domain.SequenceRecord) string { return r.AlcRear }},
	{"ACL_COLOR", func(r domain.SequenceRecord) string { return r.AclColor }},
	{"VIN_NO", func(r domain.SequenceRecord) string { return r.VinNo }},
	{"PROD_DATE", func(r domain.SequenceRecord) string { return r.ProdDate }},
	{"EXT_COLOR", func(r domain.SequenceRecord) string { return r.ExtColor }},
	{"WORK_FLAG", func(r domain.SequenceRecord) string { return r.WorkFlag }},
	{"ASSEMBLY_COMPLETE", func(r domain.SequenceRecord) string { return r.AssemblyComplete }},
	{"DATA_SOURCE", func(r domain.SequenceRecord) string { return r.DataSource }},
}

// BuildSequenceWorkbook renders sequence records as a single-sheet xlsx
// workbook and returns its bytes.
func BuildSequenceWorkbook(records []domain.SequenceRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to start workbook stream: %w", err)
	}

	headerRow := make([]interface{}, len(sequenceExportColumns))
	for i, col := range sequenceExportColumns {
		headerRow[i] = col.header
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, record := range records {
		row := make([]interface{}, len(sequenceExportColumns))
		for j, col := range sequenceExportColumns {
			row[j] = col.value(record)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush workbook stream: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"car_type":    "CAR_TYPE",
		" Line Id ":   "LINE_ID",
		"ALC  CODE":   "ALC_CODE",
		"EXT_TEXT1":   "ETC_TEXT01",
		"EXT_TEXT12":  "ETC_TEXT12",
		"etc_text3":   "ETC_TEXT03",
		"ETC_TEXT07":  "ETC_TEXT07",
		"REMARK":      "REMARK",
		"EXT_TEXTX":   "EXT_TEXTX", // not the numbered pattern
		"EXT_TEXT123": "EXT_TEXT123",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), "header %q", in)
	}
}

func buildSheet(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestParseSpecSheet(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		{"car type", "LINE_ID", "alc_code", "TYPE", "ITEM_CD", "BODY_TYPE", "EXT_TEXT1"},
		{"CN7", "C1", "A01", "SEQ", "ITEM1", "4DR", "foo"},
		{"", "", "", "", "", "", ""}, // blank row dropped
		{"NX4", "C2", "A02", "SEQ", "ITEM2", "5DR"},
	})

	rows, err := ParseSpecSheet(r)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "CN7", rows[0]["CAR_TYPE"])
	assert.Equal(t, "foo", rows[0]["ETC_TEXT01"])
	assert.Equal(t, "NX4", rows[1]["CAR_TYPE"])
	// Short rows still carry every header key.
	assert.Equal(t, "", rows[1]["ETC_TEXT01"])
}

func TestParseSpecSheetEmpty(t *testing.T) {
	r := buildSheet(t, [][]interface{}{
		{"CAR_TYPE", "LINE_ID"},
	})

	_, err := ParseSpecSheet(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestParseSpecSheetNotAWorkbook(t *testing.T) {
	_, err := ParseSpecSheet(bytes.NewReader([]byte("definitely not xlsx")))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBuildSequenceWorkbook(t *testing.T) {
	records := []domain.SequenceRecord{
		{ProdDttm: "20250830142530", CommitNo: "0001", BodyNo: "B001", VinNo: "VIN001", AssemblyComplete: "완료", DataSource: "LIVE"},
		{ProdDttm: "20250830142531", CommitNo: "0002", BodyNo: "B002", VinNo: "VIN002", AssemblyComplete: "미완료", DataSource: "BACKUP"},
	}

	data, err := BuildSequenceWorkbook(records)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "PROD_DTTM", rows[0][0])
	assert.Equal(t, "20250830142530", rows[1][0])
	assert.Equal(t, "BACKUP", rows[2][12])
}

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-grade-extractor/internal/grades"
)

func score(t *testing.T, s string) *grades.Score {
	t.Helper()
	v, err := grades.ParseScore(s)
	require.NoError(t, err)
	return &v
}

func sampleTable(t *testing.T) *grades.Table {
	r := grades.NewReconciler()
	r.Add(grades.GradeRecord{
		Sequence:        1,
		StudentID:       "0020210001",
		FirstMiddleName: "Nguyễn Văn",
		LastName:        "An",
		Midterm:         score(t, "8.00"),
		Final:           score(t, "8.50"),
		Letter:          grades.GradeB,
	})
	r.Add(grades.GradeRecord{
		Sequence:        2,
		StudentID:       "0020210002",
		FirstMiddleName: "Trần Thị",
		LastName:        "Bình",
		Final:           score(t, "6.25"),
		Letter:          grades.GradeC,
		Note:            "Hoãn thi",
	})
	return r.Finalize()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatXLSX, true},
		{"xlsx", FormatXLSX, true},
		{".CSV", FormatCSV, true},
		{" json ", FormatJSON, true},
		{"ods", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "k65.xlsx", FileName("/data/k65.pdf", FormatXLSX))
	assert.Equal(t, "k65.PDF.csv", FileName("k65.PDF.pdf", FormatCSV))
	assert.Equal(t, "bang diem.json", FileName("bang diem.PDF", FormatJSON))
	assert.Equal(t, "grades.xlsx", FileName("", FormatXLSX))
}

func TestWrite_EmptyTable(t *testing.T) {
	empty := grades.NewReconciler().Finalize()
	for _, f := range []Format{FormatXLSX, FormatCSV, FormatJSON} {
		var buf bytes.Buffer
		assert.ErrorIs(t, Write(&buf, f, empty), grades.ErrNoRows, f.String())
		assert.Zero(t, buf.Len())
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleTable(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"STT", "Mã số sinh viên", "Họ đệm", "Tên", "Điểm giữa kỳ", "Điểm cuối kỳ", "Điểm chữ", "Ghi chú",
	}, rows[0])
	assert.Equal(t, []string{"1", "0020210001", "Nguyễn Văn", "An", "8.00", "8.50", "B"}, rows[1])
	assert.Equal(t, []string{"2", "0020210002", "Trần Thị", "Bình", "", "6.25", "C", "Hoãn thi"}, rows[2])

	typ, err := f.GetCellType(SheetName, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeNumber, typ, "student IDs stay text")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleTable(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Mã số sinh viên", records[0][1])
	assert.Equal(t, []string{"1", "0020210001", "Nguyễn Văn", "An", "8.00", "8.50", "B", ""}, records[1])
	assert.Equal(t, []string{"2", "0020210002", "Trần Thị", "Bình", "", "6.25", "C", "Hoãn thi"}, records[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleTable(t)))

	var doc struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, []string{
		"sequence", "student_id", "first_middle_name", "last_name", "midterm", "final", "letter", "note",
	}, doc.Columns)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, 8.5, doc.Rows[0]["final"])
	assert.Equal(t, "0020210001", doc.Rows[0]["student_id"])
	assert.NotContains(t, doc.Rows[0], "note")
	assert.NotContains(t, doc.Rows[1], "midterm", "absent scores are omitted, not zero")
	assert.Contains(t, buf.String(), `"final": 6.25`)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName("k65.pdf", FormatCSV))

	require.NoError(t, WriteFile(path, FormatCSV, sampleTable(t)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hoãn thi")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteFile_EmptyTableCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.xlsx")

	err := WriteFile(path, FormatXLSX, grades.NewReconciler().Finalize())
	assert.ErrorIs(t, err, grades.ErrNoRows)
	assert.NoFileExists(t, path)
}

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/acmutd/grades-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves rows to a single-sheet workbook and returns its path.
func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		if row == nil {
			continue
		}
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, addr, &row))
	}

	path := filepath.Join(t.TempDir(), "grades.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad_Workbook(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Year", "Semester", "Course", "Grade", "Count"},
		{" 2021-2022 ", "I ", " ESO100", "A", 5},
		{"2021-2022", "I", "ESO100", "B", 10},
		nil,
		{"2022-2023", "II", "MTH101", "A*", 3},
	})

	snap, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []types.GradeRecord{
		{Year: "2021-2022", Semester: "I", Course: "ESO100", Grade: "A", Count: 5},
		{Year: "2021-2022", Semester: "I", Course: "ESO100", Grade: "B", Count: 10},
		{Year: "2022-2023", Semester: "II", Course: "MTH101", Grade: "A*", Count: 3},
	}, snap.Records())
	assert.Equal(t, 0, snap.InvalidCounts())
}

func TestLoad_WorkbookHeaderBelowBlankRows(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		nil,
		nil,
		{"Year", "Semester", "Course", "Grade", "Count"},
		{"2021-2022", "I", "ESO100", "A", 5},
	})

	snap, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []types.GradeRecord{
		{Year: "2021-2022", Semester: "I", Course: "ESO100", Grade: "A", Count: 5},
	}, snap.Records())
}

func TestLoad_WorkbookMissingCells(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Course", "Year", "Grade", "Count", "Semester"},
		{"PHY102", "2020-2021", "C"},
		{"PHY102", "2020-2021", "D", "n/a", "I"},
	})

	snap, err := Load(path)
	require.NoError(t, err)

	records := snap.Records()
	require.Len(t, records, 2)
	assert.Equal(t, types.GradeRecord{Year: "2020-2021", Course: "PHY102", Grade: "C"}, records[0])
	assert.Equal(t, types.GradeRecord{Year: "2020-2021", Semester: "I", Course: "PHY102", Grade: "D"}, records[1])
	assert.Equal(t, 1, snap.InvalidCounts())
}

func TestLoad_OnlyFirstSheetIsRead(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(first, "A1", &[]any{"Year", "Semester", "Course", "Grade", "Count"}))
	require.NoError(t, f.SetSheetRow(first, "A2", &[]any{"2021-2022", "I", "ESO100", "A", 5}))

	_, err := f.NewSheet("Archive")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Archive", "A1", &[]any{"Year", "Semester", "Course", "Grade", "Count"}))
	require.NoError(t, f.SetSheetRow("Archive", "A2", &[]any{"1999-2000", "I", "OLD001", "F", 1}))

	path := filepath.Join(t.TempDir(), "grades.xlsx")
	require.NoError(t, f.SaveAs(path))

	snap, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, "ESO100", snap.Records()[0].Course)
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grades.csv")
	content := "\ufeffYear,Semester,Course,Grade,Count\n" +
		"2021-2022, I ,ESO100,A,5\n" +
		",,,,\n" +
		"2021-2022,I,ESO100,B,10.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	snap, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []types.GradeRecord{
		{Year: "2021-2022", Semester: "I", Course: "ESO100", Grade: "A", Count: 5},
		{Year: "2021-2022", Semester: "I", Course: "ESO100", Grade: "B", Count: 10},
	}, snap.Records())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.xlsx"))
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = Load(filepath.Join(dir, "grades.json"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	corrupt := filepath.Join(dir, "corrupt.xlsx")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a workbook"), 0o644))
	_, err = Load(corrupt)
	assert.Error(t, err)
}

func TestParse_EmptyInput(t *testing.T) {
	snap, err := Parse(strings.NewReader(""), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
	assert.NotNil(t, snap.Records())
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		in    string
		want  int
		valid bool
	}{
		{"", 0, true},
		{"12", 12, true},
		{" 7 ", 7, true},
		{"4.0", 4, true},
		{"abc", 0, false},
		{"NaN", 0, false},
	}

	for _, tc := range cases {
		got, ok := parseCount(tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
		assert.Equal(t, tc.valid, ok, "input %q", tc.in)
	}
}

func TestSnapshot_IsImmutable(t *testing.T) {
	input := []types.GradeRecord{{Course: "ESO100", Grade: "A", Count: 1}}
	snap := NewSnapshot(input)

	input[0].Course = "CHANGED"
	assert.Equal(t, "ESO100", snap.Records()[0].Course)

	out := snap.Records()
	out[0].Count = 99
	assert.Equal(t, 1, snap.Records()[0].Count)

	var nilSnap *Snapshot
	assert.Equal(t, 0, nilSnap.Len())
	assert.Empty(t, nilSnap.Records())
}

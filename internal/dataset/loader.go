package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/acmutd/grades-api/internal/types"
	"github.com/xuri/excelize/v2"
)

// Format identifies the tabular layout of a source.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var (
	ErrSourceNotFound    = errors.New("dataset source not found")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrSourceUnavailable = errors.New("dataset source backend not configured")
	errNoSheets          = errors.New("workbook has no sheets")
)

// Column headers expected in the first row of the source.
const (
	columnYear     = "Year"
	columnSemester = "Semester"
	columnCourse   = "Course"
	columnGrade    = "Grade"
	columnCount    = "Count"
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads the table at path.
func Load(path string) (*Snapshot, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer file.Close()

	snap, err := Parse(file, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return snap, nil
}

// Parse reads a table in the given format. Only the first sheet of a
// workbook is used.
func Parse(r io.Reader, format Format) (*Snapshot, error) {
	var (
		rows [][]string
		err  error
	)

	switch format {
	case FormatXLSX:
		rows, err = readWorkbook(r)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	records, invalid := normalizeRows(rows)
	snap := NewSnapshot(records)
	snap.invalidCounts = invalid
	return snap, nil
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

type columnIndex struct {
	year, semester, course, grade, count int
}

func indexHeader(header []string) columnIndex {
	idx := columnIndex{-1, -1, -1, -1, -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case columnYear:
			idx.year = i
		case columnSemester:
			idx.semester = i
		case columnCourse:
			idx.course = i
		case columnGrade:
			idx.grade = i
		case columnCount:
			idx.count = i
		}
	}
	return idx
}

// normalizeRows turns raw rows (header first, after any blank rows) into records and reports how
// many Count cells were unreadable.
func normalizeRows(rows [][]string) ([]types.GradeRecord, int) {
	records := []types.GradeRecord{}

	// The header is the first non-blank row; sheets often start lower down.
	for len(rows) > 0 && isBlank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return records, 0
	}

	idx := indexHeader(rows[0])
	invalid := 0

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		count, ok := parseCount(cell(row, idx.count))
		if !ok {
			invalid++
		}

		records = append(records, types.GradeRecord{
			Year:     strings.TrimSpace(cell(row, idx.year)),
			Semester: strings.TrimSpace(cell(row, idx.semester)),
			Course:   strings.TrimSpace(cell(row, idx.course)),
			Grade:    cell(row, idx.grade),
			Count:    count,
		})
	}

	return records, invalid
}

// normalizeRecord applies the same trimming rules to a record that did not
// come from a table, e.g. a Firestore document.
func normalizeRecord(r types.GradeRecord) types.GradeRecord {
	r.Year = strings.TrimSpace(r.Year)
	r.Semester = strings.TrimSpace(r.Semester)
	r.Course = strings.TrimSpace(r.Course)
	return r
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseCount reads a student count. An empty cell is zero; a non-numeric
// cell is zero and reported as invalid.
func parseCount(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}

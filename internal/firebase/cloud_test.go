package firebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUpload(t *testing.T) {
	assert.NoError(t, validateUpload("datasets/prof_grades.xlsx", []byte("x")))
	assert.Error(t, validateUpload("  ", []byte("x")))
	assert.Error(t, validateUpload("datasets/prof_grades.xlsx", nil))
	assert.Error(t, validateUpload("../prof_grades.xlsx", []byte("x")))
	assert.Error(t, validateUpload("datasets//prof_grades.xlsx", []byte("x")))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "text/csv", detectContentType("grades/prof_grades.csv"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", detectContentType("prof_grades.XLSX"))
	assert.Equal(t, "application/json", detectContentType("export.json"))
	assert.Equal(t, "application/octet-stream", detectContentType("prof_grades"))
}

func TestSanitizeDocID(t *testing.T) {
	assert.Equal(t, "grade_records", sanitizeDocID(" grade_records "))
	assert.Equal(t, "grades-2021", sanitizeDocID("grades/2021"))
	assert.Equal(t, "gradesarchive", sanitizeDocID("grades archive"))
}

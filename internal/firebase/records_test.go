package firebase

import (
	"context"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/acmutd/grades-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionName(t *testing.T) {
	name, err := collectionName(" grade records ")
	require.NoError(t, err)
	assert.Equal(t, "graderecords", name)

	name, err = collectionName("grade_records")
	require.NoError(t, err)
	assert.Equal(t, "grade_records", name)

	_, err = collectionName("   ")
	assert.Error(t, err)
}

// emulatorFirestore connects to a local Firestore emulator, or skips the
// test when FIRESTORE_EMULATOR_HOST is not set.
func emulatorFirestore(t *testing.T) *Firestore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	client, err := firestore.NewClient(context.Background(), "grades-api-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return &Firestore{Client: client}
}

func gradeRows(n int, course string) []types.GradeRecord {
	records := make([]types.GradeRecord, n)
	for i := range records {
		records[i] = types.GradeRecord{
			Year:     "2021-2022",
			Semester: "I",
			Course:   course,
			Grade:    fmt.Sprintf("G%03d", i),
			Count:    i,
		}
	}
	return records
}

func TestReplaceGradeRecords_ShrinkingReimport(t *testing.T) {
	db := emulatorFirestore(t)
	ctx := context.Background()
	collection := fmt.Sprintf("grade_records_%s", t.Name())

	require.NoError(t, db.ReplaceGradeRecords(ctx, collection, gradeRows(12, "ESO100")))
	require.NoError(t, db.ReplaceGradeRecords(ctx, collection, gradeRows(10, "MTH101")))

	records, err := db.LoadGradeRecords(ctx, collection)
	require.NoError(t, err)
	assert.Equal(t, gradeRows(10, "MTH101"), records)
}

func TestReplaceGradeRecords_NameNormalizedForReads(t *testing.T) {
	db := emulatorFirestore(t)
	ctx := context.Background()

	require.NoError(t, db.ReplaceGradeRecords(ctx, "grade records", gradeRows(3, "ESO100")))

	records, err := db.LoadGradeRecords(ctx, "grade records")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/acmutd/grades-api/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "grades.csv")
	require.NoError(t, os.WriteFile(file, []byte("Year,Semester,Course,Grade,Count\n2021-2022,I,ESO100,A,5\n"), 0o644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"inspect", "--file", file, "--log-level", "error"})
	require.NoError(t, root.Execute())

	var summary importer.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, importer.Summary{Records: 1, Courses: 1, Years: 1}, summary)
}

func TestUploadCommand_RequiresFileOrDir(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"upload", "--bucket", "grades-bucket"})
	assert.ErrorContains(t, root.Execute(), "exactly one of --file or --dir is required")
}

func TestSeedCommand_RequiresCredentials(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"seed", "--credentials", "", "--file", "grades.csv"})
	assert.ErrorContains(t, root.Execute(), "FIREBASE_CONFIG")
}

func TestUploadCommand_RequiresBucket(t *testing.T) {
	t.Setenv("DATASET_BUCKET", "")
	root := newRootCmd()
	root.SetArgs([]string{"upload", "--file", "grades.csv"})
	assert.ErrorContains(t, root.Execute(), "DATASET_BUCKET")
}

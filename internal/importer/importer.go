package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/acmutd/grades-api/internal/dataset"
	"github.com/acmutd/grades-api/internal/query"
	"github.com/acmutd/grades-api/internal/types"
	"go.uber.org/zap"
)

// ErrBackendMissing is returned when an operation needs a backend that was
// not configured.
var ErrBackendMissing = errors.New("backend not configured")

// Uploader stores a file in object storage.
type Uploader interface {
	UploadFile(ctx context.Context, bucket, path string, data []byte) error
}

// RecordWriter persists grade records to a document store. After a call the
// collection holds exactly records, in order; earlier rows are gone.
type RecordWriter interface {
	ReplaceGradeRecords(ctx context.Context, collection string, records []types.GradeRecord) error
}

// Summary describes a parsed grade table.
type Summary struct {
	Records       int `json:"records"`
	Courses       int `json:"courses"`
	Years         int `json:"years"`
	InvalidCounts int `json:"invalid_counts"`
}

// Service publishes grade spreadsheets to the backends the API can load
// from.
type Service struct {
	uploader Uploader
	writer   RecordWriter
	logger   *zap.Logger
}

// New creates an importer. Either backend may be nil if the caller only
// needs the other one.
func New(uploader Uploader, writer RecordWriter, logger *zap.Logger) *Service {
	return &Service{
		uploader: uploader,
		writer:   writer,
		logger:   logger,
	}
}

// Inspect parses the file and summarizes its contents.
func (s *Service) Inspect(file string) (Summary, error) {
	snap, err := dataset.Load(file)
	if err != nil {
		return Summary{}, err
	}
	return summarize(snap), nil
}

func summarize(snap *dataset.Snapshot) Summary {
	years := make(map[string]struct{})
	snap.Range(func(r types.GradeRecord) bool {
		years[r.Year] = struct{}{}
		return true
	})

	return Summary{
		Records:       snap.Len(),
		Courses:       len(query.NewService(snap, 0).Suggest("")),
		Years:         len(years),
		InvalidCounts: snap.InvalidCounts(),
	}
}

// Upload verifies that file parses, then stores it at bucket/objectPath.
func (s *Service) Upload(ctx context.Context, file, bucket, objectPath string) error {
	if s.uploader == nil {
		return fmt.Errorf("%w: storage", ErrBackendMissing)
	}

	summary, err := s.Inspect(file)
	if err != nil {
		return fmt.Errorf("refusing to upload %s: %w", file, err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	if err := s.uploader.UploadFile(ctx, bucket, objectPath, data); err != nil {
		return fmt.Errorf("failed to upload %s to cloud storage: %w", file, err)
	}

	s.logger.Info("uploaded grade sheet",
		zap.String("file", file),
		zap.String("bucket", bucket),
		zap.String("path", objectPath),
		zap.Int("records", summary.Records),
		zap.Int("courses", summary.Courses),
	)
	return nil
}

// UploadDir uploads every supported sheet in dir under prefix. Files that
// fail are logged and skipped; an error is returned only if none succeed.
func (s *Service) UploadDir(ctx context.Context, dir, bucket, prefix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	uploaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := dataset.FormatFromPath(entry.Name()); err != nil {
			continue
		}

		objectPath := path.Join(prefix, entry.Name())
		if err := s.Upload(ctx, filepath.Join(dir, entry.Name()), bucket, objectPath); err != nil {
			s.logger.Warn("failed to upload grade sheet", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		uploaded++
	}

	if uploaded == 0 {
		return 0, fmt.Errorf("no grade sheets were successfully uploaded from %s", dir)
	}

	s.logger.Info("uploaded grade sheets", zap.String("dir", dir), zap.Int("count", uploaded))
	return uploaded, nil
}

// Seed parses file and replaces the contents of collection with its records
// in table order.
func (s *Service) Seed(ctx context.Context, file, collection string) (int, error) {
	if s.writer == nil {
		return 0, fmt.Errorf("%w: firestore", ErrBackendMissing)
	}

	snap, err := dataset.Load(file)
	if err != nil {
		return 0, err
	}

	records := snap.Records()
	if err := s.writer.ReplaceGradeRecords(ctx, collection, records); err != nil {
		return 0, fmt.Errorf("failed to seed %s: %w", collection, err)
	}

	s.logger.Info("seeded grade records",
		zap.String("file", file),
		zap.String("collection", collection),
		zap.Int("records", len(records)),
	)
	return len(records), nil
}

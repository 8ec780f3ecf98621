package dataset

import (
	"bytes"
	"context"
	"fmt"

	"github.com/acmutd/grades-api/internal/config"
	"github.com/acmutd/grades-api/internal/types"
	"go.uber.org/zap"
)

// ObjectDownloader fetches a stored object, e.g. from Cloud Storage.
type ObjectDownloader interface {
	Download(ctx context.Context, bucket, path string) ([]byte, error)
}

// RecordReader reads already-ingested records, e.g. from Firestore.
type RecordReader interface {
	LoadGradeRecords(ctx context.Context, collection string) ([]types.GradeRecord, error)
}

// Sources holds the optional remote backends. Only the one selected by the
// configuration needs to be set.
type Sources struct {
	Storage   ObjectDownloader
	Firestore RecordReader
}

// Open loads the configured dataset once. When loading fails and
// FailOnLoadError is false, the failure is logged and an empty snapshot is
// returned so the server can still start.
func Open(ctx context.Context, cfg *config.Config, src Sources, logger *zap.Logger) (*Snapshot, error) {
	fields := []zap.Field{
		zap.String("source", cfg.Source),
		zap.String("path", cfg.DatasetPath),
	}

	snap, err := fetch(ctx, cfg, src)
	if err != nil {
		if cfg.FailOnLoadError {
			logger.Error("failed to load dataset", append(fields, zap.Error(err))...)
			return nil, err
		}
		logger.Error("failed to load dataset, serving an empty dataset", append(fields, zap.Error(err))...)
		return Empty(), nil
	}

	if snap.Len() == 0 && cfg.Source != config.SourceFile {
		logger.Warn("remote dataset source returned no records",
			append(fields, zap.String("bucket", cfg.Bucket), zap.String("collection", cfg.Collection))...)
	}
	if n := snap.InvalidCounts(); n > 0 {
		logger.Warn("rows with non-numeric counts were loaded as zero", append(fields, zap.Int("rows", n))...)
	}
	logger.Info("dataset loaded", append(fields, zap.Int("records", snap.Len()))...)

	return snap, nil
}

func fetch(ctx context.Context, cfg *config.Config, src Sources) (*Snapshot, error) {
	switch cfg.Source {
	case config.SourceFile:
		return Load(cfg.DatasetPath)

	case config.SourceStorage:
		if src.Storage == nil {
			return nil, fmt.Errorf("%w: storage", ErrSourceUnavailable)
		}
		format, err := FormatFromPath(cfg.DatasetPath)
		if err != nil {
			return nil, err
		}
		data, err := src.Storage.Download(ctx, cfg.Bucket, cfg.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("failed to download dataset: %w", err)
		}
		snap, err := Parse(bytes.NewReader(data), format)
		if err != nil {
			return nil, fmt.Errorf("failed to parse dataset %s: %w", cfg.DatasetPath, err)
		}
		return snap, nil

	case config.SourceFirestore:
		if src.Firestore == nil {
			return nil, fmt.Errorf("%w: firestore", ErrSourceUnavailable)
		}
		records, err := src.Firestore.LoadGradeRecords(ctx, cfg.Collection)
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset collection %s: %w", cfg.Collection, err)
		}
		for i := range records {
			records[i] = normalizeRecord(records[i])
		}
		return NewSnapshot(records), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, cfg.Source)
	}
}

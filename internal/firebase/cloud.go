package firebase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	goStorage "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/storage"
	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when the requested object does not exist.
var ErrObjectNotFound = errors.New("storage object not found")

type CloudStorage struct {
	*storage.Client
}

func NewCloudStorage(ctx context.Context, app *firebase.App) (*CloudStorage, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	return &CloudStorage{
		Client: client,
	}, nil
}

// UploadFile writes data to bucket/path with a content type guessed from the
// extension and a fresh Firebase download token.
func (s *CloudStorage) UploadFile(ctx context.Context, bucketName, path string, data []byte) error {
	if err := validateUpload(path, data); err != nil {
		return fmt.Errorf("upload validation failed: %w", err)
	}

	bucket, err := s.Bucket(bucketName)
	if err != nil {
		return fmt.Errorf("failed to get storage bucket '%s': %w", bucketName, err)
	}

	writer := bucket.Object(path).NewWriter(ctx)
	writer.ObjectAttrs.ContentType = detectContentType(path)
	writer.ObjectAttrs.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": uuid.New().String(),
	}

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to upload file data: %w", err)
	}

	// The object is only committed once the writer is closed.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload of %s: %w", path, err)
	}

	return nil
}

// Download reads bucket/path fully into memory.
func (s *CloudStorage) Download(ctx context.Context, bucketName, path string) ([]byte, error) {
	bucket, err := s.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage bucket '%s': %w", bucketName, err)
	}

	reader, err := bucket.Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, goStorage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: gs://%s/%s", ErrObjectNotFound, bucketName, path)
		}
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}

	return data, nil
}

// validateUpload performs input validation for file uploads
func validateUpload(path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	if len(data) == 0 {
		return fmt.Errorf("file data cannot be empty")
	}

	if strings.Contains(path, "..") || strings.Contains(path, "//") {
		return fmt.Errorf("invalid file path: contains unsafe characters")
	}

	return nil
}

func detectContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv":
		return "text/csv"
	case ".xlsx", ".xlsm":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".json":
		return "application/json"
	}

	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}

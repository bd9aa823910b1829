package storage

import "context"

// ObjectInfo represents metadata for a stored report object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the S3-compatible operations the report exporter
// needs: upload a finished report file and list previously uploaded ones.
type ObjectStorage interface {
	UploadFile(ctx context.Context, key, path string) error
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

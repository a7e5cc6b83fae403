package port

import "context"

// FileStorage archives uploaded spreadsheets and exported vouchers
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
}

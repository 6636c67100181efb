package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeAtomic writes src to a temp file next to dest and renames it into
// place, so readers never see a partial file. It returns the bytes written.
func writeAtomic(ctx context.Context, dest string, src io.WriterTo) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".fitsweep-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, 0o644)

	n, err := src.WriteTo(tmp)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("rename into place: %w", err)
	}
	return n, nil
}

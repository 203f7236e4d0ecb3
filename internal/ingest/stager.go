package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sultanMIB/pdf-ui/internal/common"
)

// Stager writes uploads to a scratch directory under content-addressed names
// so concurrent uploads never collide.
type Stager struct {
	dir    string
	logger *slog.Logger
}

func NewStager(dir string, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "pdf-ui-uploads")
	}
	return &Stager{dir: dir, logger: logger}
}

// Dir returns the staging directory.
func (s *Stager) Dir() string { return s.dir }

// Stage writes data to <dir>/<sha256>-<random>.pdf. The returned cleanup
// removes the file; it is best effort and only logs failures. Identical
// concurrent uploads get distinct files.
func (s *Stager) Stage(ctx context.Context, data []byte) (string, func(), error) {
	log := common.LoggerFrom(ctx, s.logger)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.CreateTemp(s.dir, ContentHash(data)+"-*.pdf")
	if err != nil {
		return "", func() {}, fmt.Errorf("create upload: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", func() {}, fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", func() {}, fmt.Errorf("close upload: %w", err)
	}
	log.Debug("ingest.stage.ok", "path", path, "bytes", len(data))

	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("ingest.cleanup.failed", "path", path, "err", err)
		}
	}
	return path, cleanup, nil
}

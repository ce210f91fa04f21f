package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local writes files below a base directory.
type Local struct {
	BaseDir string
	// URLPrefix is prepended to the relative path in returned locations.
	URLPrefix string
}

func NewLocal(baseDir string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %v", baseDir, err)
	}
	return &Local{BaseDir: baseDir, URLPrefix: "/uploads"}, nil
}

func (l *Local) Mode() string { return "local" }

func (l *Local) Upload(ctx context.Context, folder, filename, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	folder, err := cleanFolder(folder)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(l.BaseDir, filepath.FromSlash(folder))
	baseAbs, err := filepath.Abs(l.BaseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %v", err)
	}
	dirAbs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid folder path: %v", err)
	}
	if dirAbs != baseAbs && !strings.HasPrefix(dirAbs, baseAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q is outside the uploads directory", ErrInvalidFolder, folder)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", dir, err)
	}

	name := objectName(filename, time.Now())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %v", err)
	}

	rel := name
	if folder != "" {
		rel = folder + "/" + name
	}
	return strings.TrimRight(l.URLPrefix, "/") + "/" + rel, nil
}

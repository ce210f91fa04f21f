// Package upload stores exported artifacts on local disk or in S3.
package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Uploader interface {
	// Upload stores data under folder and returns its public path or URL.
	Upload(ctx context.Context, folder, filename, contentType string, data []byte) (string, error)
	Mode() string
}

// ErrInvalidFolder rejects folders that would escape the upload root.
var ErrInvalidFolder = errors.New("invalid upload folder")

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// objectName builds "<stamp>-<uuid8>-<base><ext>" from a user-supplied name.
func objectName(filename string, now time.Time) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "-"), "-")
	ext = unsafeChars.ReplaceAllString(ext, "")
	if base == "" {
		base = "export"
	}
	return fmt.Sprintf("%s-%s-%s%s", now.Format("20060102-150405"), uuid.New().String()[:8], base, ext)
}

// cleanFolder turns a requested folder into a relative slash path with no
// parent references.
func cleanFolder(folder string) (string, error) {
	folder = strings.Trim(filepath.ToSlash(folder), "/")
	if folder == "" {
		return "", nil
	}
	for _, part := range strings.Split(folder, "/") {
		if part == ".." || part == "." {
			return "", fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
		}
	}
	return folder, nil
}

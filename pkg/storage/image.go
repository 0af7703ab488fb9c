package storage

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// SniffLen is how many leading bytes ValidateImage needs.
const SniffLen = 3072

var (
	ErrUnsupportedImage = errors.New("unsupported image content type")
	ErrImageExtension   = errors.New("unsupported image extension")
)

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// ValidateImage checks the filename extension and the sniffed content type and
// returns the detected MIME type.
func ValidateImage(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return "", ErrImageExtension
	}
	detected := mimetype.Detect(head)
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", ErrUnsupportedImage
}

// ImageKey builds a unique object key that keeps the original extension.
func ImageKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

package validators

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/angelmondragon/storefront-backend/internal/uploads"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// formOverhead leaves room for the non-file fields and multipart boundaries.
const formOverhead = 64 << 10

// IsMultipart reports whether the request carries a multipart/form-data body.
func IsMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// ParseMultipart parses the form, rejecting bodies larger than maxBytes.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes>>20))
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid multipart form")
	}
	return nil
}

// FormImage returns the optional file posted under field. The closer is nil when no file was sent.
func FormImage(r *http.Request, field string) (*uploads.ImageFile, io.Closer, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid file upload")
	}
	return &uploads.ImageFile{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	}, file, nil
}

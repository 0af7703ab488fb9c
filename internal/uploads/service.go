package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/storage"
)

const (
	invalidExtensionMessage = "Invalid file type. Only JPEG, JPG, PNG, and GIF are allowed."
	notAnImageMessage       = "Only image files are allowed!"
	missingFileMessage      = "File is required"

	// ProductImagePrefix groups catalog images under one key prefix.
	ProductImagePrefix = "products"
)

// ImageFile is an uploaded file as received from a multipart form.
type ImageFile struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// StoredImage describes a persisted image.
type StoredImage struct {
	URL string `json:"url"`
	Key string `json:"-"`
}

// Service validates and persists images.
type Service interface {
	StoreImage(ctx context.Context, prefix string, file ImageFile) (*StoredImage, error)
	Discard(ctx context.Context, image *StoredImage)
}

type service struct {
	store    storage.Store
	maxBytes int64
	logg     *logger.Logger
}

// NewService builds an upload service over the configured store.
func NewService(store storage.Store, maxBytes int64, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{store: store, maxBytes: maxBytes, logg: logg}, nil
}

func (s *service) StoreImage(ctx context.Context, prefix string, file ImageFile) (*StoredImage, error) {
	if file.Body == nil || file.Filename == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, missingFileMessage).WithDetails([]string{missingFileMessage})
	}
	if file.Size > s.maxBytes {
		msg := fmt.Sprintf("File too large. Maximum size is %dMB", s.maxBytes>>20)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails([]string{msg})
	}

	head := make([]byte, storage.SniffLen)
	n, err := io.ReadFull(file.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload")
	}
	head = head[:n]

	contentType, err := storage.ValidateImage(file.Filename, head)
	if err != nil {
		msg := notAnImageMessage
		if errors.Is(err, storage.ErrImageExtension) {
			msg = invalidExtensionMessage
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails([]string{msg})
	}

	key := storage.ImageKey(prefix, file.Filename)
	url, err := s.store.Put(ctx, storage.Object{
		Key:         key,
		ContentType: contentType,
		Size:        file.Size,
		Body:        io.MultiReader(bytes.NewReader(head), file.Body),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}
	return &StoredImage{URL: url, Key: key}, nil
}

// Discard removes an image whose owning write failed. Errors are logged only.
func (s *service) Discard(ctx context.Context, image *StoredImage) {
	if image == nil || image.Key == "" {
		return
	}
	if err := s.store.Delete(ctx, image.Key); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "object_key", image.Key), "uploads.discard_failed", err)
	}
}

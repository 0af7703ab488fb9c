package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/uploads"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubUploadService struct {
	prefix string
	file   uploads.ImageFile
	data   []byte
}

func (s *stubUploadService) StoreImage(_ context.Context, prefix string, file uploads.ImageFile) (*uploads.StoredImage, error) {
	s.prefix = prefix
	s.file = file
	if file.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "File is required")
	}
	s.data, _ = io.ReadAll(file.Body)
	return &uploads.StoredImage{URL: "/uploads/products/abc.png", Key: "products/abc.png"}, nil
}

func (s *stubUploadService) Discard(context.Context, *uploads.StoredImage) {}

func TestUploadImage(t *testing.T) {
	svc := &stubUploadService{}
	req := multipartRequest(t, http.MethodPost, "/uploads", nil, uploadField, "pixel.png", pngBytes)
	rec := httptest.NewRecorder()

	UploadImage(svc, maxUpload, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "File uploaded successfully", env.Message)
	assert.JSONEq(t, `{"url":"/uploads/products/abc.png"}`, string(env.Object))
	assert.Equal(t, uploads.ProductImagePrefix, svc.prefix)
	assert.Equal(t, "pixel.png", svc.file.Filename)
	assert.Equal(t, pngBytes, svc.data)
}

func TestUploadImageMissingFile(t *testing.T) {
	req := multipartRequest(t, http.MethodPost, "/uploads", map[string]string{"note": "x"}, "", "", nil)
	rec := httptest.NewRecorder()

	UploadImage(&stubUploadService{}, maxUpload, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File is required", decode(t, rec).Message)
}

func TestUploadImageTooLarge(t *testing.T) {
	svc := &stubUploadService{}
	big := make([]byte, 2<<20)
	req := multipartRequest(t, http.MethodPost, "/uploads", nil, uploadField, "big.png", big)
	rec := httptest.NewRecorder()

	UploadImage(svc, 1<<20, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File too large. Maximum size is 1MB", decode(t, rec).Message)
	assert.Nil(t, svc.data)
}

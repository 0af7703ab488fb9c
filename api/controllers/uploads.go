package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/uploads"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const uploadField = "file"

// UploadImage stores a standalone image and returns its public URL.
func UploadImage(svc uploads.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := validators.ParseMultipart(w, r, maxUploadBytes); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		file, closer, err := validators.FormImage(r, uploadField)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if closer != nil {
			defer closer.Close()
		}
		if file == nil {
			file = &uploads.ImageFile{}
		}

		stored, err := svc.StoreImage(ctx, uploads.ProductImagePrefix, *file)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "File uploaded successfully", stored)
	}
}

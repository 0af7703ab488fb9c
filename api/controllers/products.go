package controllers

import (
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/uploads"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const (
	imageField        = "image"
	maxSearchLength   = 100
	maxCategoryLength = 100
)

type createProductBody struct {
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"required,min=10"`
	Price       decimal.Decimal `json:"price" validate:"required,gt=0,lt=100000000,cents"`
	Stock       *int            `json:"stock" validate:"required,min=0,max=2147483647"`
	Category    *string         `json:"category" validate:"omitempty,max=100"`
}

type updateProductBody struct {
	Name        *string          `json:"name" validate:"omitempty,min=3,max=100"`
	Description *string          `json:"description" validate:"omitempty,min=10"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gt=0,lt=100000000,cents"`
	Stock       *int             `json:"stock" validate:"omitempty,min=0,max=2147483647"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
}

// ProductCreate accepts JSON or a multipart form with an optional image.
func ProductCreate(svc product.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		principal := middleware.PrincipalFromContext(ctx)
		if principal == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized"))
			return
		}

		var body createProductBody
		var image *uploads.ImageFile
		if validators.IsMultipart(r) {
			var closer io.Closer
			var err error
			image, closer, err = readCreateForm(w, r, maxUploadBytes, &body)
			if closer != nil {
				defer closer.Close()
			}
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		} else if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		created, err := svc.Create(ctx, product.CreateProductInput{
			Name:        strings.TrimSpace(body.Name),
			Description: strings.TrimSpace(body.Description),
			Price:       body.Price,
			Stock:       *body.Stock,
			Category:    trimmedOrNil(body.Category),
			Image:       image,
		}, principal.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Product created successfully", created)
	}
}

// ProductUpdate applies a partial update; omitted fields keep their value.
func ProductUpdate(svc product.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body updateProductBody
		var image *uploads.ImageFile
		if validators.IsMultipart(r) {
			var closer io.Closer
			var err error
			image, closer, err = readUpdateForm(w, r, maxUploadBytes, &body)
			if closer != nil {
				defer closer.Close()
			}
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		} else if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := product.UpdateProductInput{
			Name:        trimmedOrNil(body.Name),
			Description: trimmedOrNil(body.Description),
			Price:       body.Price,
			Stock:       body.Stock,
			Category:    trimmedOrNil(body.Category),
			Image:       image,
		}
		updated, err := svc.Update(ctx, chi.URLParam(r, "id"), input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Product updated successfully", updated)
	}
}

// ProductList serves the filtered, sorted and paginated catalog.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.FindAll(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePaginated(w, "Products retrieved successfully", result.Items, result.Page)
	}
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, err := svc.FindOne(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Product retrieved successfully", found)
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "Product deleted successfully", nil)
	}
}

func parseListQuery(r *http.Request) (product.ListQuery, error) {
	var q product.ListQuery

	page, err := validators.ParseQueryInt(r, "page", pagination.DefaultPage, 1, math.MaxInt32)
	if err != nil {
		return q, err
	}
	limitKey := "limit"
	if strings.TrimSpace(r.URL.Query().Get(limitKey)) == "" {
		limitKey = "pageSize"
	}
	limit, err := validators.ParseQueryInt(r, limitKey, pagination.DefaultLimit, 1, math.MaxInt32)
	if err != nil {
		return q, err
	}
	q.Pagination = pagination.Params{Page: page, Limit: limit}

	if q.SortBy, err = validators.ParseQueryEnum(r, "sortBy", enums.ParseProductSortField, enums.ProductSortFieldNames()); err != nil {
		return q, err
	}
	if q.SortOrder, err = validators.ParseQueryEnum(r, "sortOrder", enums.ParseSortOrder, enums.SortOrderNames()); err != nil {
		return q, err
	}
	if q.StockStatus, err = validators.ParseQueryEnum(r, "stockStatus", enums.ParseStockStatus, enums.StockStatusNames()); err != nil {
		return q, err
	}

	if q.MinPrice, err = validators.ParseQueryDecimal(r, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = validators.ParseQueryDecimal(r, "maxPrice"); err != nil {
		return q, err
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return q, pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").
			WithDetails([]string{"minPrice cannot be greater than maxPrice"})
	}

	values := r.URL.Query()
	q.Search = validators.SanitizeString(values.Get("search"), maxSearchLength)
	q.Category = validators.SanitizeString(values.Get("category"), maxCategoryLength)
	q.Categories = validators.ParseQueryList(r, "categories", maxCategoryLength)
	return q, nil
}

func readCreateForm(w http.ResponseWriter, r *http.Request, maxBytes int64, body *createProductBody) (*uploads.ImageFile, io.Closer, error) {
	if err := validators.ParseMultipart(w, r, maxBytes); err != nil {
		return nil, nil, err
	}
	var details []string
	body.Name = r.FormValue("name")
	body.Description = r.FormValue("description")
	if raw, ok := formValue(r, "price"); ok {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			details = append(details, "Price must be a positive number greater than 0")
		} else {
			body.Price = price
		}
	}
	if raw, ok := formValue(r, "stock"); ok {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, "Stock must be a non-negative integer")
		} else {
			body.Stock = &stock
		}
	}
	if raw, ok := formValue(r, "category"); ok {
		body.Category = &raw
	}
	if len(details) > 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").WithDetails(details)
	}
	if err := validators.Validate(body); err != nil {
		return nil, nil, err
	}
	return validators.FormImage(r, imageField)
}

func readUpdateForm(w http.ResponseWriter, r *http.Request, maxBytes int64, body *updateProductBody) (*uploads.ImageFile, io.Closer, error) {
	if err := validators.ParseMultipart(w, r, maxBytes); err != nil {
		return nil, nil, err
	}
	var details []string
	if raw, ok := formValue(r, "name"); ok {
		body.Name = &raw
	}
	if raw, ok := formValue(r, "description"); ok {
		body.Description = &raw
	}
	if raw, ok := formValue(r, "price"); ok {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			details = append(details, "Price must be a positive number greater than 0")
		} else {
			body.Price = &price
		}
	}
	if raw, ok := formValue(r, "stock"); ok {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, "Stock must be a non-negative integer")
		} else {
			body.Stock = &stock
		}
	}
	if raw, ok := formValue(r, "category"); ok {
		body.Category = &raw
	}
	if len(details) > 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").WithDetails(details)
	}
	if err := validators.Validate(body); err != nil {
		return nil, nil, err
	}
	return validators.FormImage(r, imageField)
}

// formValue reports a multipart text field only when the client actually sent it.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}

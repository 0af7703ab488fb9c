package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/uploads"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const (
	productNotFoundMessage  = "Product not found"
	duplicateNameMessage    = "Product with this name already exists"
	createFailedMessage     = "Failed to create product"
	productHasOrdersMessage = "Product is referenced by existing orders and cannot be deleted"
	valueRejectedMessage    = "Product values are outside the accepted range"
)

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput, ownerID uuid.UUID) (*ProductDTO, error)
	Update(ctx context.Context, id string, input UpdateProductInput) (*ProductDTO, error)
	FindAll(ctx context.Context, query ListQuery) (*ListResult, error)
	FindOne(ctx context.Context, id string) (*ProductDTO, error)
	Delete(ctx context.Context, id string) error
}

type imageStore interface {
	StoreImage(ctx context.Context, prefix string, file uploads.ImageFile) (*uploads.StoredImage, error)
	Discard(ctx context.Context, image *uploads.StoredImage)
}

// ServiceParams bundles the product service dependencies. Images and Cache are optional.
type ServiceParams struct {
	Repo   *Repository
	Images imageStore
	Cache  *ListCache
}

type service struct {
	repo   *Repository
	images imageStore
	cache  *ListCache
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{
		repo:   params.Repo,
		images: params.Images,
		cache:  params.Cache,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput, ownerID uuid.UUID) (*ProductDTO, error) {
	image, err := s.storeImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    input.Category,
		UserID:      ownerID,
	}
	if image != nil {
		product.ImageURL = &image.URL
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		s.discard(ctx, image)
		if db.IsUniqueViolationOn(err, "products", "name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, duplicateNameMessage)
		}
		if db.IsValueRejected(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, valueRejectedMessage).
				WithDetails([]string{valueRejectedMessage})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, createFailedMessage)
	}

	s.cache.Invalidate(ctx)
	return toDTO(created), nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateProductInput) (*ProductDTO, error) {
	productID, err := parseProductID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.findByID(ctx, productID); err != nil {
		return nil, err
	}

	fields := updateFields(input)

	image, err := s.storeImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}
	if image != nil {
		fields["image_url"] = image.URL
	}

	if err := s.repo.UpdateFields(ctx, productID, fields); err != nil {
		s.discard(ctx, image)
		if db.IsUniqueViolationOn(err, "products", "name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, duplicateNameMessage)
		}
		if db.IsValueRejected(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, valueRejectedMessage).
				WithDetails([]string{valueRejectedMessage})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}

	updated, err := s.findByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		s.cache.Invalidate(ctx)
	}
	return toDTO(updated), nil
}

func (s *service) FindAll(ctx context.Context, query ListQuery) (*ListResult, error) {
	q := query.Normalize()
	if cached, ok := s.cache.Lookup(ctx, q); ok {
		return cached, nil
	}

	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	items := make([]ProductSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSummary(row))
	}
	result := &ListResult{
		Items: items,
		Page: pagination.Page{
			Number:    q.Pagination.Page,
			Size:      q.Pagination.Limit,
			TotalSize: total,
		},
	}
	s.cache.Store(ctx, q, result)
	return result, nil
}

func (s *service) FindOne(ctx context.Context, id string) (*ProductDTO, error) {
	productID, err := parseProductID(id)
	if err != nil {
		return nil, err
	}
	product, err := s.findByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toDTO(product), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	productID, err := parseProductID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteProduct(ctx, productID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, productHasOrdersMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *service) findByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func (s *service) storeImage(ctx context.Context, file *uploads.ImageFile) (*uploads.StoredImage, error) {
	if file == nil {
		return nil, nil
	}
	if s.images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "image storage is not configured")
	}
	return s.images.StoreImage(ctx, uploads.ProductImagePrefix, *file)
}

func (s *service) discard(ctx context.Context, image *uploads.StoredImage) {
	if image != nil && s.images != nil {
		s.images.Discard(ctx, image)
	}
}

// updateFields maps the provided values to columns. An omitted category keeps
// the stored one.
func updateFields(input UpdateProductInput) map[string]any {
	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Price != nil {
		fields["price"] = *input.Price
	}
	if input.Stock != nil {
		fields["stock"] = *input.Stock
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	return fields
}

// parseProductID treats malformed ids like unknown ones.
func parseProductID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	return id, nil
}

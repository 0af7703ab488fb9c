package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product. Missing rows return gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate loads the product holding a row lock until the surrounding
// transaction ends. Dialects without row locks ignore the clause.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateFields writes only the provided columns.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteProduct removes the product permanently and reports whether a row was deleted.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementStock subtracts qty only while enough stock remains. It returns
// false when the guard rejected the update.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// List returns one page of products matching the query and the total match count.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Product, int64, error) {
	q := query.Normalize()

	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := r.filtered(ctx, q).
		Order(clause.OrderByColumn{
			Column: clause.Column{Name: q.SortBy.Column()},
			Desc:   q.SortOrder == enums.SortDesc,
		}).
		Order("id").
		Offset(q.Pagination.Offset()).
		Limit(q.Pagination.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountByStockStatus returns how many products sit in the low-stock and out-of-stock buckets.
func (r *Repository) CountByStockStatus(ctx context.Context) (low int64, out int64, err error) {
	if err = r.db.WithContext(ctx).Model(&models.Product{}).
		Scopes(stockStatusScope(enums.StockStatusLowStock)).
		Count(&low).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&models.Product{}).
		Scopes(stockStatusScope(enums.StockStatusOutOfStock)).
		Count(&out).Error; err != nil {
		return 0, 0, err
	}
	return low, out, nil
}

// FindLowStock returns up to limit low-stock products, scarcest first.
func (r *Repository) FindLowStock(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Scopes(stockStatusScope(enums.StockStatusLowStock)).
		Order("stock ASC").Order("name ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) filtered(ctx context.Context, q ListQuery) *gorm.DB {
	qb := r.db.WithContext(ctx).Model(&models.Product{})

	if q.Search != "" {
		qb = qb.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(q.Search))+"%")
	}
	if categories := q.categorySet(); len(categories) > 0 {
		qb = qb.Where("category IN ?", categories)
	}
	if q.MinPrice != nil {
		qb = qb.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		qb = qb.Where("price <= ?", *q.MaxPrice)
	}
	if q.StockStatus != "" {
		qb = qb.Scopes(stockStatusScope(q.StockStatus))
	}
	return qb
}

func stockStatusScope(status enums.StockStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case enums.StockStatusInStock:
			return db.Where("stock > 0")
		case enums.StockStatusOutOfStock:
			return db.Where("stock = 0")
		case enums.StockStatusLowStock:
			return db.Where("stock > 0 AND stock <= ?", enums.LowStockThreshold)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing owned by the admin that created it.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"column:name;type:text;not null;uniqueIndex" json:"name"`
	Description string          `gorm:"column:description;type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;check:products_price_positive,price > 0" json:"price"`
	Stock       int             `gorm:"column:stock;not null;default:0;check:products_stock_non_negative,stock >= 0" json:"stock"`
	Category    *string         `gorm:"column:category;type:text" json:"category"`
	ImageURL    *string         `gorm:"column:image_url;type:text" json:"imageUrl"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null" json:"userId"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

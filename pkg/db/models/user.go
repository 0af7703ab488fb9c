package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// User represents an account that can sign in and place orders.
type User struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Username  string     `gorm:"column:username;type:text;not null;uniqueIndex"`
	Email     string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	Password  string     `gorm:"column:password;type:text;not null"`
	Role      enums.Role `gorm:"column:role;type:user_role;not null;default:CUSTOMER"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = enums.RoleCustomer
	}
	return nil
}

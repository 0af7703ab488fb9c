package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

// SeedAccount is a user created by the seed command when missing.
type SeedAccount struct {
	Username string
	Email    string
	Password string
	Role     enums.Role
}

// ErrSeedInProduction is returned when the development logins would be
// written to a production database.
var ErrSeedInProduction = errors.New("refusing to seed development accounts in production")

// CheckSeedAllowed rejects seeding when app runs in production.
func CheckSeedAllowed(app config.AppConfig) error {
	if app.IsProd() {
		return ErrSeedInProduction
	}
	return nil
}

// DefaultSeedAccounts are the local development logins.
var DefaultSeedAccounts = []SeedAccount{
	{Username: "admin", Email: "admin@example.com", Password: "Admin@123", Role: enums.RoleAdmin},
	{Username: "user1", Email: "test@example.com", Password: "Pass@123", Role: enums.RoleCustomer},
}

// Seed inserts every account whose email is not taken yet and returns how many were created.
func Seed(ctx context.Context, repo *Repository, cfg config.PasswordConfig, accounts []SeedAccount) (int, error) {
	created := 0
	for _, account := range accounts {
		_, err := repo.FindByEmail(ctx, account.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("lookup %s: %w", account.Email, err)
		}
		hash, err := security.HashPassword(account.Password, cfg)
		if err != nil {
			return created, fmt.Errorf("hash password for %s: %w", account.Username, err)
		}
		if _, err := repo.Create(ctx, CreateUserDTO{
			Username:     account.Username,
			Email:        account.Email,
			PasswordHash: hash,
			Role:         account.Role,
		}); err != nil {
			return created, fmt.Errorf("create %s: %w", account.Username, err)
		}
		created++
	}
	return created, nil
}

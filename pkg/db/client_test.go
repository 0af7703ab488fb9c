package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:db_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := NewFromGorm(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := newTestDB(t)
	client := NewFromGorm(db)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&testModel{Name: "panicked"}).Error; err != nil {
				return err
			}
			panic("boom")
		})
	}()

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected panic rollback to leave 0 records, got %d", count)
	}
}

func TestPing(t *testing.T) {
	client := NewFromGorm(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&testModel{Name: "dup"}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	sqliteErr := db.Create(&testModel{Name: "dup"}).Error
	if !IsUniqueViolation(sqliteErr, "") {
		t.Fatalf("expected sqlite unique violation, got %v", sqliteErr)
	}
	if !IsUniqueViolation(sqliteErr, "test_models.name") {
		t.Fatalf("expected sqlite violation to reference column, got %v", sqliteErr)
	}

	pgErr := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	if !IsUniqueViolation(pgErr, "users_email_key") {
		t.Fatal("expected pgx unique violation to match constraint")
	}
	if IsUniqueViolation(pgErr, "users_username_key") {
		t.Fatal("expected pgx unique violation not to match other constraint")
	}

	if !IsUniqueViolation(&pq.Error{Code: "23505", Constraint: "products_name_key"}, "products_name_key") {
		t.Fatal("expected pq unique violation to match constraint")
	}
	if IsUniqueViolation(errors.New("connection reset"), "") {
		t.Fatal("unexpected match for generic error")
	}
	if !IsNotFound(fmt.Errorf("wrap: %w", gorm.ErrRecordNotFound)) {
		t.Fatal("expected wrapped ErrRecordNotFound to be detected")
	}
}

func TestIsUniqueViolationOn(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	if !IsUniqueViolationOn(pgErr, "users", "username") {
		t.Fatal("expected postgres constraint to match")
	}
	sqliteErr := errors.New("UNIQUE constraint failed: users.email")
	if !IsUniqueViolationOn(sqliteErr, "users", "email") {
		t.Fatal("expected sqlite message to match")
	}
	if IsUniqueViolationOn(sqliteErr, "users", "username") {
		t.Fatal("expected other column not to match")
	}
}

func TestIsValueRejected(t *testing.T) {
	if !IsValueRejected(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23514", ConstraintName: "products_price_positive"})) {
		t.Fatal("expected check violation to be a rejected value")
	}
	if !IsValueRejected(&pq.Error{Code: "22003"}) {
		t.Fatal("expected numeric overflow to be a rejected value")
	}
	if !IsValueRejected(errors.New("CHECK constraint failed: products_stock_non_negative")) {
		t.Fatal("expected sqlite check failure to be a rejected value")
	}
	if IsValueRejected(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violations are not rejected values")
	}
	if IsValueRejected(errors.New("connection reset")) {
		t.Fatal("unexpected match for generic error")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("expected pgx foreign key violation")
	}
	if !IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")) {
		t.Fatal("expected sqlite foreign key violation")
	}
	if IsForeignKeyViolation(nil) {
		t.Fatal("nil is not a violation")
	}
}

package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

// DefaultDir is relative to the repository root, where cmd/* binaries are
// started. New migrations are written here.
const DefaultDir = "pkg/migrate/migrations"

const embeddedDir = "migrations"

//go:embed migrations/*.sql
var embedded embed.FS

var runCommands = map[string]bool{
	"up":     true,
	"down":   true,
	"status": true,
	"redo":   true,
	"reset":  true,
}

// source points goose at dir, or at the migrations compiled into the binary
// when dir is empty, and returns the directory goose should read.
func source(dir string) string {
	if dir == "" {
		goose.SetBaseFS(embedded)
		return embeddedDir
	}
	goose.SetBaseFS(nil)
	return dir
}

// Run executes a goose command against the storefront schema. An empty dir
// runs the embedded migrations.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if !runCommands[command] {
		return fmt.Errorf("unsupported migrate command %q (expected one of: up, down, status, redo, reset)", command)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, source(dir), args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Versions lists the known migration versions in ascending order.
func Versions(dir string) ([]int64, error) {
	migrations, err := goose.CollectMigrations(source(dir), 0, goose.MaxVersion)
	if err != nil {
		return nil, fmt.Errorf("collect migrations: %w", err)
	}
	versions := make([]int64, 0, len(migrations))
	for _, m := range migrations {
		versions = append(versions, m.Version)
	}
	return versions, nil
}

// MigrateToVersion moves the schema up or down to targetVersion. The target
// must be 0 (empty schema) or one of the known migrations.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	target, err := parseTarget(dir, targetVersion)
	if err != nil {
		return err
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	path := source(dir)
	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, path, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, path, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

func parseTarget(dir, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("target version is required")
	}
	target, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || target < 0 {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS or 0)", raw)
	}
	if target == 0 {
		return 0, nil
	}
	versions, err := Versions(dir)
	if err != nil {
		return 0, err
	}
	for _, v := range versions {
		if v == target {
			return target, nil
		}
	}
	return 0, fmt.Errorf("unknown migration version %d", target)
}

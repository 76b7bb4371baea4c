package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pressly/goose/v3"
)

const (
	DefaultDir = "pkg/migrate/migrations"
	dialect    = "postgres"
)

// shipped holds the migrations compiled into every binary, so the api can
// migrate without the source tree next to it.
//
//go:embed migrations/*.sql
var shipped embed.FS

// source resolves dir to a filesystem for goose. DefaultDir (or an empty
// dir) means the embedded set; anything else is read from disk.
func source(dir string) (fs.FS, string) {
	if dir == "" || filepath.Clean(dir) == filepath.Clean(DefaultDir) {
		return shipped, "migrations"
	}
	return os.DirFS(dir), "."
}

// Run executes a goose command (up, down, redo, status) against db.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	sub, err := prepare(db, dir)
	if err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, sub, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down to targetVersion
// (YYYYMMDDHHMMSS).
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	if targetVersion == "" {
		return errors.New("target version is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	sub, err := prepare(db, dir)
	if err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	switch {
	case current < target:
		err = goose.UpToContext(ctx, db, sub, target)
	case current > target:
		err = goose.DownToContext(ctx, db, sub, target)
	}
	if err != nil {
		return fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
	}
	return nil
}

func prepare(db *sql.DB, dir string) (string, error) {
	if db == nil {
		return "", errors.New("db is required")
	}
	fsys, sub := source(dir)
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	return sub, nil
}

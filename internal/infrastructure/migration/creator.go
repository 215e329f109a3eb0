package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MigrationFile represents a migration file pair
type MigrationFile struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration creates an empty up/down migration file pair named with a
// sortable timestamp version.
func CreateMigration(migrationsDir, name string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	if slug == "" {
		return nil, fmt.Errorf("migration name cannot be empty")
	}

	version := time.Now().Format("20060102150405")
	upPath := filepath.Join(migrationsDir, fmt.Sprintf("%s_%s.up.sql", version, slug))
	downPath := filepath.Join(migrationsDir, fmt.Sprintf("%s_%s.down.sql", version, slug))

	header := fmt.Sprintf("-- Migration: %s\n\n", slug)
	if err := os.WriteFile(upPath, []byte(header), 0644); err != nil {
		return nil, fmt.Errorf("failed to write up migration: %w", err)
	}
	if err := os.WriteFile(downPath, []byte(header), 0644); err != nil {
		return nil, fmt.Errorf("failed to write down migration: %w", err)
	}

	return &MigrationFile{
		Version:  version,
		Name:     slug,
		UpPath:   upPath,
		DownPath: downPath,
	}, nil
}

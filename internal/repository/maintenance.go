package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"intake-bot/internal/model"
)

// Migrate brings an existing store up to the current schema. Changes are additive only;
// the returned slice names what was created.
func Migrate(ctx context.Context, db *gorm.DB) ([]string, error) {
	db = db.WithContext(ctx)
	migrator := db.Migrator()

	if !migrator.HasTable(&model.User{}) {
		if err := db.AutoMigrate(&model.User{}); err != nil {
			return nil, fmt.Errorf("create users table: %w", err)
		}
		return []string{"table users"}, nil
	}

	var added []string
	columns := []struct {
		field  string
		column string
	}{
		{field: "RequestKind", column: "request_type"},
		{field: "MediaRef", column: "file_id"},
	}
	for _, c := range columns {
		if migrator.HasColumn(&model.User{}, c.column) {
			continue
		}
		if err := migrator.AddColumn(&model.User{}, c.field); err != nil {
			return added, fmt.Errorf("add column %s: %w", c.column, err)
		}
		added = append(added, "column "+c.column)
	}
	return added, nil
}

// HealthReport describes the state of the store file and its table.
type HealthReport struct {
	Path        string
	Exists      bool
	Size        int64
	Mode        os.FileMode
	DirWritable bool
	DirError    string
	TableExists bool
	UserCount   int64
	QueryError  string
}

// Health inspects the store the way an operator would before blaming the bot.
func Health(ctx context.Context, db *gorm.DB, path string) HealthReport {
	report := HealthReport{Path: path}
	if abs, err := filepath.Abs(path); err == nil {
		report.Path = abs
	}

	if info, err := os.Stat(path); err == nil {
		report.Exists = true
		report.Size = info.Size()
		report.Mode = info.Mode().Perm()
	}

	probe, err := os.CreateTemp(filepath.Dir(report.Path), ".write-probe-*")
	if err != nil {
		report.DirError = err.Error()
	} else {
		report.DirWritable = true
		probe.Close()
		os.Remove(probe.Name())
	}

	if db == nil {
		return report
	}
	db = db.WithContext(ctx)
	report.TableExists = db.Migrator().HasTable(&model.User{})
	if report.TableExists {
		if err := db.Model(&model.User{}).Count(&report.UserCount).Error; err != nil {
			report.QueryError = err.Error()
		}
	}
	return report
}

package database

import (
	"github.com/go-gormigrate/gormigrate/v2"
	migration_20250301_0000 "github.com/twincore-io/twincore/internal/database/migration_20250301_0000"
	"github.com/twincore-io/twincore/internal/database/migrations"
)

// Migrations lists every schema migration in order. gormigrate adds schema
// versioning and rollback on top of gorm's migration functions; see
// https://gorm.io/docs/migration.html for help writing migration steps.
func Migrations() *migrations.Migrations {
	return &migrations.Migrations{
		GormOptions: &gormigrate.Options{
			TableName:      "apiserver_migrations",
			IDColumnName:   "id",
			IDColumnSize:   40,
			UseTransaction: false,
		},
		Migrations: []*gormigrate.Migration{
			migration_20250301_0000.Migrate(),
		},
	}
}

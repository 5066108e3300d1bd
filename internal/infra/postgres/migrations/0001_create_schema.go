package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_schema.sql
var createSchemaSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createSchemaSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS progress_answers;
				DROP TABLE IF EXISTS quiz_progress;
				DROP TABLE IF EXISTS quiz_questions;
				DROP TABLE IF EXISTS quotes;
				DROP TABLE IF EXISTS users;
				DROP TABLE IF EXISTS admins;
				DROP TABLE IF EXISTS students;
			`)
			return err
		},
	)
}

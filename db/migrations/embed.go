// Package migrations contains the embedded PostgreSQL schema as bun SQL migrations.
package migrations

import (
	"embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed *.sql
var FS embed.FS

var Migrations = migrate.NewMigrations()

func init() {
	// Имя миграции берется из префикса файла: <timestamp>_<comment>.up.sql / .down.sql.
	if err := Migrations.Discover(FS); err != nil {
		panic(err)
	}
}

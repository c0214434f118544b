package db

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationFS embed.FS

// Schema names the migration set owned by one service.
type Schema string

const (
	CatalogSchema Schema = "catalog"
	CartSchema    Schema = "cart"
	OrderSchema   Schema = "order"
)

// RunDBMigration applies the embedded migrations of schema. Each service
// keeps its own migrations table so they can share a database in dev.
func RunDBMigration(schema Schema, dsn string) error {
	src, err := iofs.New(migrationFS, "migrations/"+string(schema))
	if err != nil {
		return fmt.Errorf("load %s migrations: %w", schema, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, withMigrationsTable(dsn, schema))
	if err != nil {
		return fmt.Errorf("create %s migrate instance: %w", schema, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run %s migrations: %w", schema, err)
	}
	return nil
}

func withMigrationsTable(dsn string, schema Schema) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sx-migrations-table=%s_schema_migrations", dsn, sep, schema)
}

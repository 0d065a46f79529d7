package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const migrationsCollection = "schema_migrations"

// RunMigrations applies the JSON command migrations in migrationsPath
// (indexes and collection options) to the database named by uri.
func RunMigrations(uri, migrationsPath string) error {
	databaseURL, err := migrationURL(uri)
	if err != nil {
		return err
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), databaseURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// migrationURL makes the database explicit and names the version collection.
// The migrate driver rejects URIs without a database path.
func migrationURL(uri string) (string, error) {
	database, err := DatabaseName(uri)
	if err != nil {
		return "", err
	}

	base, query, _ := strings.Cut(uri, "?")
	if schemeEnd := strings.Index(base, "://"); schemeEnd >= 0 {
		hostsAndPath := base[schemeEnd+3:]
		if slash := strings.Index(hostsAndPath, "/"); slash >= 0 {
			base = base[:schemeEnd+3+slash]
		}
	}
	base += "/" + database

	params := "x-migrations-collection=" + migrationsCollection
	if query != "" {
		params = query + "&" + params
	}
	return base + "?" + params, nil
}

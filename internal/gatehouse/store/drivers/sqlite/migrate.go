package sqlite

import (
	"context"
	"errors"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store/drivers/sqlite/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

// ApplyMigrations applies any pending migrations using the schema files
// embedded in the binary.
func (s *Store) ApplyMigrations() error {
	instance, err := s.migrateInstance()
	if err != nil {
		return err
	}

	err = instance.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Reset drops every object in the database and re-applies all migrations,
// leaving an empty schema. This backs the administrative reset-and-seed
// operation and must stay off any normal request path.
func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	instance, err := s.migrateInstance()
	if err != nil {
		return err
	}
	if err := instance.Drop(); err != nil {
		return err
	}

	// Drop removes the schema_migrations bookkeeping table too, so a fresh
	// instance is needed to run Up again.
	fresh, err := s.migrateInstance()
	if err != nil {
		return err
	}
	err = fresh.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Store) migrateInstance() (*migrate.Migrate, error) {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", src, "", driver)
}

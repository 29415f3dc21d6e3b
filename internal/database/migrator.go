package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/go-modelstate/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// SchemaVersionTable records the applied migration version.
const SchemaVersionTable = "schema_version"

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded migrations with tern over a dedicated
// connection, logging each step.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	conn, err := pgx.Connect(ctx, DSN(cfg.Database))
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, SchemaVersionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	m.OnStart = func(sequence int32, name, direction, _ string) {
		logger.Info().
			Int32("sequence", sequence).
			Str("migration", name).
			Str("direction", direction).
			Msg("applying migration")
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	logger.Info().
		Int32("from", from).
		Int("to", len(m.Migrations)).
		Bool("changed", from != int32(len(m.Migrations))).
		Msg("database schema ready")

	return nil
}

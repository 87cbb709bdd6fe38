package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type step struct {
	Name string
	SQL  string
}

// steps are idempotent; a partially migrated schema is completed on the next start.
var steps = []step{
	{
		Name: "create_extension_pgcrypto",
		SQL:  `CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	},
	{
		Name: "create_table_owners",
		SQL: `CREATE TABLE IF NOT EXISTS owners (
  kind       TEXT        NOT NULL,
  id         TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  deleted_at TIMESTAMPTZ NULL,
  PRIMARY KEY (kind, id)
);`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id           UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  owner_kind   TEXT        NOT NULL,
  owner_id     TEXT        NOT NULL,
  uuid         UUID        NOT NULL UNIQUE,
  display_name TEXT        NULL,
  disk         TEXT        NOT NULL,
  filepath     TEXT        NOT NULL,
  filename     TEXT        NOT NULL,
  mimetype     TEXT        NOT NULL,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  meta         JSONB       NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT files_disk_filepath_key UNIQUE (disk, filepath),
  CONSTRAINT files_owner_fkey FOREIGN KEY (owner_kind, owner_id) REFERENCES owners (kind, id)
);`,
	},
	{
		Name: "create_index_files_owner",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_owner ON files (owner_kind, owner_id, created_at);`,
	},
	{
		Name: "create_index_files_mimetype",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_mimetype ON files (mimetype);`,
	},
}

// Tables lists the tables whose presence marks the schema as migrated.
var Tables = []string{"owners", "files"}

// EnsureMigrated creates the schema unless every table in Tables already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	log.InfoContext(ctx, "db_migration_check")

	missing, err := missingTables(ctx, db)
	if err != nil {
		log.ErrorContext(ctx, "db_migration_failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("check schema: %w", err)
	}
	if len(missing) == 0 {
		log.InfoContext(ctx, "db_migration_skip", "duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	log.InfoContext(ctx, "db_migration_start", "missing_tables", missing)

	for _, s := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, s.SQL); err != nil {
			log.ErrorContext(ctx, "db_migration_failed",
				"migration_step", s.Name,
				"error", err,
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", s.Name, err)
		}
		log.DebugContext(ctx, "db_migration_step",
			"migration_step", s.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.InfoContext(ctx, "db_migration_success",
		"steps", len(steps),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func missingTables(ctx context.Context, db *sql.DB) ([]string, error) {
	var missing []string
	for _, table := range Tables {
		var exists bool
		if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}

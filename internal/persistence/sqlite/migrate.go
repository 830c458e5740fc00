package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type migrationScript struct {
	version int
	name    string
	sql     string
}

// Migrate brings the database schema up to date. Scripts are embedded in the
// binary and applied in version order, each inside its own transaction, with
// applied versions recorded in schema_migrations. Running it twice is a no-op.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("sqlite: failed to create schema_migrations table: %w", err)
	}

	scripts, err := loadMigrationScripts()
	if err != nil {
		return err
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return err
	}

	for _, script := range scripts {
		if _, ok := applied[script.version]; ok {
			continue
		}

		err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(script.sql); err != nil {
				return fmt.Errorf("sqlite: migration %04d_%s failed: %w", script.version, script.name, err)
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
				script.version, script.name, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func loadMigrationScripts() ([]migrationScript, error) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to read embedded migrations: %w", err)
	}

	scripts := make([]migrationScript, 0, len(entries))
	for _, entry := range entries {
		filename := entry.Name()

		// Filenames follow NNNN_name.sql.
		base, ok := strings.CutSuffix(filename, ".sql")
		if !ok {
			continue
		}
		versionPart, name, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("sqlite: malformed migration filename %s", filename)
		}
		version, err := strconv.Atoi(versionPart)
		if err != nil {
			return nil, fmt.Errorf("sqlite: malformed migration version in %s: %w", filename, err)
		}

		content, err := migrationFiles.ReadFile("migrations/" + filename)
		if err != nil {
			return nil, fmt.Errorf("sqlite: failed to read migration %s: %w", filename, err)
		}

		scripts = append(scripts, migrationScript{version: version, name: name, sql: string(content)})
	}

	sort.Slice(scripts, func(i, j int) bool { return scripts[i].version < scripts[j].version })

	for i := 1; i < len(scripts); i++ {
		if scripts[i].version == scripts[i-1].version {
			return nil, fmt.Errorf("sqlite: duplicate migration version %d", scripts[i].version)
		}
	}

	return scripts, nil
}

func appliedVersions(ctx context.Context, pool *ConnectionPool) (map[int]struct{}, error) {
	rows, err := pool.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]struct{})
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = struct{}{}
	}
	return applied, rows.Err()
}

package db

import "embed"

// MigrationFS holds the SQL migration files applied by internal/db/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS

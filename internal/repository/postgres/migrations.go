package postgres

import "embed"

// Migrations holds the schema migrations applied by golang-migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

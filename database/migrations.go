package database

import "embed"

// Migrations holds the Postgres schema, applied by the database provider on start.
//
//go:embed migrations/*.sql
var Migrations embed.FS

package db

import "embed"

// EmbedMigrations holds the workspace schema migrations compiled into the
// binary so deployments never need the SQL files on disk.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS

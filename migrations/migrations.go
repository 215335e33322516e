package migrations

import "embed"

// Migration files are bundled at compile time so the binary can bootstrap
// its own schema.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS

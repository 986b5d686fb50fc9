// Package migrations embeds the goose migrations for the pgvector index.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

// Package migrations embeds the goose migrations of the side index schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

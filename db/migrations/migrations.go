// Package migrations embeds the goose SQL migrations so every guild store
// can be migrated without shipping the sql files alongside the binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

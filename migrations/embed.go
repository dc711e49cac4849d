// Package migrations embeds the goose SQL migrations for the Shopifree schema.
package migrations

import "embed"

// FS holds every *.sql migration. cmd/api applies it when MIGRATE_ON_START
// is set; the repo tests apply it once in TestMain.
//
//go:embed *.sql
var FS embed.FS

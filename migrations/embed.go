// Package migrations embeds the postgres schema so the migrate binary ships it.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

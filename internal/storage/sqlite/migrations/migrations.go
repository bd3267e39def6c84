// Package migrations embeds the SQLite schema for the run library.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

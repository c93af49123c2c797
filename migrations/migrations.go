// Package migrations holds the SQL schema, embedded into the binary.
package migrations

import "embed"

// FS contains the numbered up/down migration files
//
//go:embed *.sql
var FS embed.FS

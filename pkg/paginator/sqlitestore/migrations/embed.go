package migrations

import "embed"

// FS contains the embedded paginator schema migrations.
//
//go:embed *.sql
var FS embed.FS

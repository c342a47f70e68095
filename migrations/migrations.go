// Package migrations embeds the schema files so the binaries migrate without
// access to the source tree.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Package migrations embeds the goose SQL migrations so the server binary
// and the test helpers can apply the schema without a checkout of this
// directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

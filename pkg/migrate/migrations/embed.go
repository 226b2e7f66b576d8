// Package migrations carries the store schema compiled into every binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

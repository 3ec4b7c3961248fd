// Package migrations carries the database schema so the binary can apply it
// without access to the source tree.
package migrations

import _ "embed"

//go:embed schema.sql
var Schema string

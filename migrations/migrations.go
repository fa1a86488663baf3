// Package migrations embeds the SQL schema migrations so the binary can
// migrate on startup without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Files returns the embedded migration filesystem.
func Files() embed.FS {
	return FS
}

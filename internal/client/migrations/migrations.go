// Package migrations embeds the goose migrations of the client databases:
// "local" for the local store and "state" for the checkpoint slot file.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed local/*.sql state/*.sql
var Migrations embed.FS

// Local returns the migrations of the local store.
func Local() fs.FS {
	sub, _ := fs.Sub(Migrations, "local")
	return sub
}

// State returns the migrations of the checkpoint state database.
func State() fs.FS {
	sub, _ := fs.Sub(Migrations, "state")
	return sub
}

package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// StaticFS returns the embedded browser UI.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}

//go:build !dev

package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var embeddedFiles embed.FS

// Templates returns the page templates compiled into the binary.
func Templates() fs.FS {
	return sub("templates")
}

// Static returns the scripts and stylesheets compiled into the binary.
func Static() fs.FS {
	return sub("static")
}

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(embeddedFiles, dir)
	if err != nil {
		panic(err)
	}
	return fsys
}

//go:build dev

package web

import (
	"io/fs"
	"os"
	"path/filepath"
)

// In development mode templates and static files are read from the working
// tree on every request, so edits show up without a rebuild.

func Templates() fs.FS {
	return os.DirFS(dir("templates"))
}

func Static() fs.FS {
	return os.DirFS(dir("static"))
}

func dir(name string) string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(wd, "web", name)
}

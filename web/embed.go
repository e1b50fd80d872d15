// Package web embeds the HTML templates and static assets of the web UI.
package web

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static templates
var content embed.FS

func sub(dir string) fs.FS {
	f, err := fs.Sub(content, dir)
	if err != nil {
		panic(fmt.Sprintf("embedded %s directory: %v", dir, err))
	}
	return f
}

// StaticFS returns the stylesheet and other static files.
func StaticFS() fs.FS {
	return sub("static")
}

// TemplatesFS returns the page templates.
func TemplatesFS() fs.FS {
	return sub("templates")
}

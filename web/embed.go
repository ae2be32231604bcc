// Package web embeds the browser assets served by the dashboard.
//
// The page itself is rendered server-side; static/ only carries the small
// script that auto-submits the sentiment filter and reloads the page when
// another tab of the same session changes the data.
//
// Usage in the API server:
//
//	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS())))
package web

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed static
var assets embed.FS

// StaticFS returns a filesystem rooted at the embedded static/ directory.
func StaticFS() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		log.Fatalf("web.StaticFS: %v", err)
	}
	return sub
}

package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// StaticHandler serves the dashboard status page assets (index.html, status.js...).
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The embedded directory always exists.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

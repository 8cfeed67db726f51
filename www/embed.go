package www

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"orderdesk/assets"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var pageFiles = []string{
	"templates/dashboard.html",
	"templates/login.html",
}

// parsePages parses layout + partials as a base set and clones it per page,
// so each page's {{define "content"}} stays its own.
func parsePages(res assets.Resolver) map[string]*template.Template {
	base := template.New("").Funcs(templateFuncs(res))
	base = template.Must(base.ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html"))

	tmpls := make(map[string]*template.Template, len(pageFiles))
	for _, p := range pageFiles {
		clone := template.Must(base.Clone())
		clone = template.Must(clone.ParseFS(templateFS, p))
		tmpls[strings.TrimPrefix(p, "templates/")] = clone
	}
	return tmpls
}

func staticHandler() http.Handler {
	sub, _ := fs.Sub(staticFS, "static")
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

package server

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFiles embed.FS

// pageTemplates holds every page, parsed once at start-up and keyed by file name.
var pageTemplates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

func lookupTemplate(name string) (*template.Template, error) {
	tmpl := pageTemplates.Lookup(name)
	if tmpl == nil {
		return nil, fmt.Errorf("[server lookupTemplate] no page template %q", name)
	}
	return tmpl, nil
}

package view

import (
	"fmt"
	"html/template"

	"user-roster/web"
)

// IndexTemplate is the roster page.
const IndexTemplate = "index.html"

// UserRow is one table row on the roster page.
type UserRow struct {
	ID    int64
	Name  string
	Email string
}

// PageData is the model handed to page templates.
type PageData struct {
	Title      string
	ActionPath string
	Users      []UserRow
}

// LoadTemplates parses the embedded layouts, partials and pages.
func LoadTemplates() (*template.Template, error) {
	tpl, err := template.New("root").ParseFS(web.Templates,
		"templates/layouts/*.html",
		"templates/partials/*.html",
		"templates/pages/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tpl, nil
}

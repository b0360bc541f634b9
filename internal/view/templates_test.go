package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplates_RendersRoster(t *testing.T) {
	tpl, err := LoadTemplates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tpl.ExecuteTemplate(&buf, IndexTemplate, PageData{
		Title:      "Users",
		ActionPath: "/action",
		Users: []UserRow{
			{ID: 1, Name: "John Doe", Email: "john@example.com"},
			{ID: 2, Name: "<b>Jane</b>", Email: "jane@example.com"},
		},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Equal(t, 2, strings.Count(html, `<tr data-user-id=`))
	assert.Contains(t, html, `<tr data-user-id="1">`)
	assert.Contains(t, html, "<td>John Doe</td>")
	assert.Contains(t, html, "&lt;b&gt;Jane&lt;/b&gt;")
	assert.NotContains(t, html, "<b>Jane</b>")
	assert.Contains(t, html, `id="add-user-form"`)
	assert.Contains(t, html, `data-endpoint="/action"`)
	assert.Contains(t, html, `src="/static/js/roster.js"`)
}

func TestLoadTemplates_EmptyRoster(t *testing.T) {
	tpl, err := LoadTemplates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tpl.ExecuteTemplate(&buf, IndexTemplate, PageData{Title: "Users", ActionPath: "/action"}))
	assert.NotContains(t, buf.String(), "data-user-id")
}

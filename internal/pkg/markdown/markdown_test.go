package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	html, err := r.Render("# Admissions\n\n| Term | Deadline |\n|---|---|\n| Fall | 2024-05-01 |\n\nVisit https://cs.example.edu")
	require.NoError(t, err)
	assert.Contains(t, html, `<h1 id="admissions">Admissions</h1>`)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, `<a href="https://cs.example.edu">`)
}

func TestRender_DropsRawHTML(t *testing.T) {
	html, err := NewRenderer().Render("hello <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

// Package web renders the public note share page. Note content is
// markdown; everything that reaches the browser goes through bluemonday.
package web

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/inkpad/inkpad/internal/notes"
)

const publicNoteHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - Inkpad</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 720px; margin: 0 auto; padding: 24px;">
    <article>
        <h1>{{.Title}}</h1>
        <p style="color: #999; font-size: 14px;">Updated {{formatTime .UpdatedAt}}</p>
        {{if .ImageURL}}<img src="{{.ImageURL}}" alt="" style="max-width: 100%;">{{end}}
        <div>{{.Body}}</div>
    </article>
    <hr style="border: none; border-top: 1px solid #e0e0e0; margin: 32px 0 16px;">
    <p style="color: #999; font-size: 13px;">Shared with <a href="/">Inkpad</a></p>
</body>
</html>`

var pageTemplate = template.Must(
	template.New("public_note").Funcs(template.FuncMap{"formatTime": formatTime}).Parse(publicNoteHTML),
)

type publicNoteData struct {
	Title     string
	ImageURL  string
	UpdatedAt time.Time
	Body      template.HTML
}

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(source string) template.HTML {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	doc := parser.NewWithExtensions(extensions).Parse([]byte(source))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})
	rendered := markdown.Render(doc, renderer)

	sanitized := bluemonday.UGCPolicy().SanitizeBytes(rendered)
	return template.HTML(sanitized)
}

// PublicNotePage writes the shared view of a note.
func PublicNotePage(w http.ResponseWriter, note *notes.Note) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, publicNoteData{
		Title:     note.Title,
		ImageURL:  note.ImageURL,
		UpdatedAt: note.UpdatedAt,
		Body:      RenderMarkdown(note.Content),
	})
	if err != nil {
		return fmt.Errorf("web: render public note: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

package controllers

import (
	"net/http"

	"github.com/angelmondragon/gearmarket-web/api/responses"
	"github.com/angelmondragon/gearmarket-web/api/validators"
	"github.com/angelmondragon/gearmarket-web/internal/markup"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
	"github.com/angelmondragon/gearmarket-web/pkg/metrics"
)

type htmlBody struct {
	HTML string `json:"html"`
}

type markdownBody struct {
	Markdown string `json:"markdown"`
}

// MarkupToMarkdown converts editor HTML into the markdown stored with a listing.
func MarkupToMarkdown(m *metrics.GalleryMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body htmlBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := markup.HTMLToMarkdown(body.HTML)
		m.IncConversion(metrics.DirectionHTMLToMarkdown)
		responses.WriteSuccess(w, markdownBody{Markdown: out})
	}
}

func MarkupToHTML(m *metrics.GalleryMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body markdownBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := markup.MarkdownToHTML(body.Markdown)
		m.IncConversion(metrics.DirectionMarkdownToHTML)
		responses.WriteSuccess(w, htmlBody{HTML: out})
	}
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	ReorderSourcePointer      = "pointer"
	ReorderSourceProgrammatic = "programmatic"

	DirectionHTMLToMarkdown = "html_to_markdown"
	DirectionMarkdownToHTML = "markdown_to_html"
)

// GalleryMetrics counts editor activity: committed reorders, abandoned drags and description conversions.
type GalleryMetrics struct {
	commits     *prometheus.CounterVec
	cancelled   prometheus.Counter
	conversions *prometheus.CounterVec
}

// NewGalleryMetrics registers the editor metrics on the provided registerer.
func NewGalleryMetrics(reg prometheus.Registerer) *GalleryMetrics {
	if reg == nil {
		return &GalleryMetrics{}
	}
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_reorder_commits_total",
		Help: "Committed gallery reorders by origin.",
	}, []string{"source"})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallery_drag_cancelled_total",
		Help: "Drag sessions discarded without a commit.",
	})
	conversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "markup_conversions_total",
		Help: "Description conversions by direction.",
	}, []string{"direction"})
	reg.MustRegister(commits, cancelled, conversions)
	return &GalleryMetrics{commits: commits, cancelled: cancelled, conversions: conversions}
}

func (g *GalleryMetrics) IncCommit(source string) {
	if g == nil || g.commits == nil {
		return
	}
	g.commits.WithLabelValues(normalizeLabel(source)).Inc()
}

func (g *GalleryMetrics) IncCancelled() {
	if g == nil || g.cancelled == nil {
		return
	}
	g.cancelled.Inc()
}

func (g *GalleryMetrics) IncConversion(direction string) {
	if g == nil || g.conversions == nil {
		return
	}
	g.conversions.WithLabelValues(normalizeLabel(direction)).Inc()
}

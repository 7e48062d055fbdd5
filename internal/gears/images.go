package gears

import (
	"regexp"
	"strings"
)

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// ImageResolver turns stored image paths into browser-loadable URLs.
type ImageResolver struct {
	// BaseURL is used when a listing carries no public_base_url of its own.
	BaseURL string
	// AssetVersion is appended as v=... to every relative image.
	AssetVersion string
}

// Resolve joins raw onto base (or the resolver's BaseURL) and appends the cache-bust.
// Absolute http(s) URLs are returned untouched.
func (r ImageResolver) Resolve(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if absoluteURL.MatchString(raw) {
		return raw
	}

	base = strings.TrimSpace(base)
	if base == "" {
		base = strings.TrimSpace(r.BaseURL)
	}
	base = strings.TrimSuffix(base, "/")
	if base == "" {
		return r.cacheBust(raw)
	}
	return r.cacheBust(base + "/" + strings.TrimPrefix(raw, "/"))
}

func (r ImageResolver) cacheBust(url string) string {
	if r.AssetVersion == "" {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "v=" + r.AssetVersion
}

// Cover resolves the listing's representative image, or "" when it has none.
func (r ImageResolver) Cover(images *ImageData) string {
	if images == nil || len(images.URLs) == 0 {
		return ""
	}
	return r.Resolve(images.URLs[images.ClampedMainIndex()], images.PublicBaseURL)
}

// All resolves every image URL in display order.
func (r ImageResolver) All(images *ImageData) []string {
	if images == nil {
		return []string{}
	}
	out := make([]string, 0, len(images.URLs))
	for _, raw := range images.URLs {
		if url := r.Resolve(raw, images.PublicBaseURL); url != "" {
			out = append(out, url)
		}
	}
	return out
}

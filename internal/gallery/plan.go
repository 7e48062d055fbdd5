package gallery

import "strings"

// SubmitPlan is the gallery as the listing API expects it on save: kept URLs and new
// uploads each in display order, and the cover as an index into kept-then-new.
type SubmitPlan struct {
	KeepURLs  []string `json:"keepImageUrls"`
	NewIDs    []string `json:"newImageIds"`
	MainIndex int      `json:"mainImageIndex"`
}

// HasMain reports whether a cover index should be sent.
func (p SubmitPlan) HasMain() bool { return p.MainIndex >= 0 }

// Plan flattens the committed order into a SubmitPlan. MainIndex is -1 when the
// collection is empty.
func (c *Collection) Plan() SubmitPlan {
	plan := SubmitPlan{KeepURLs: []string{}, NewIDs: []string{}, MainIndex: -1}
	for _, item := range c.items {
		switch item.Kind {
		case KindExisting:
			plan.KeepURLs = append(plan.KeepURLs, item.ID)
		case KindNew:
			plan.NewIDs = append(plan.NewIDs, item.ID)
		}
	}

	rep, ok := c.Representative()
	if !ok {
		return plan
	}
	if rep.Kind == KindExisting {
		for i, url := range plan.KeepURLs {
			if url == rep.ID {
				plan.MainIndex = i
			}
		}
		return plan
	}
	for i, id := range plan.NewIDs {
		if id == rep.ID {
			plan.MainIndex = len(plan.KeepURLs) + i
		}
	}
	return plan
}

// FromListing seeds a collection from a stored listing's image URLs. mainIndex is
// clamped into range and mapped onto the matching URL. Blank and repeated URLs are
// skipped. preview may be nil, in which case the URL itself is the preview.
func FromListing(urls []string, mainIndex int, preview func(string) string) *Collection {
	c := &Collection{}
	seen := make(map[string]struct{}, len(urls))
	var mainURL string
	if len(urls) > 0 {
		mainURL = urls[max(0, min(mainIndex, len(urls)-1))]
	}
	for _, raw := range urls {
		url := strings.TrimSpace(raw)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		p := url
		if preview != nil {
			p = preview(url)
		}
		c.items = append(c.items, Item{Kind: KindExisting, ID: url, Preview: p})
	}
	if mainURL != "" {
		_ = c.SetRepresentative(strings.TrimSpace(mainURL))
	}
	c.repair()
	return c
}

package models

import "strings"

// AnalyzeRequest is the query string of GET /api/analyze.
type AnalyzeRequest struct {
	// URL is the channel page to analyze. Required; must point at youtube.com.
	URL string `form:"url"`
}

// youTubeMarker is the substring every accepted URL must contain.
const youTubeMarker = "youtube.com/"

// Validate rejects missing and non-YouTube URLs before any browser work.
func (r *AnalyzeRequest) Validate() error {
	r.URL = strings.TrimSpace(r.URL)
	if r.URL == "" || !strings.Contains(r.URL, youTubeMarker) {
		return NewScrapeError(ErrCodeInvalidInput, InvalidURLMessage, nil)
	}
	return nil
}

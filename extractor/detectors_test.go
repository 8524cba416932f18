package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"drops blank entries", "a, b, , c", []string{"a", "b", "c"}},
		{"keeps order and duplicates", "go,rust , go", []string{"go", "rust", "go"}},
		{"only delimiters", " , ,, ", []string{}},
		{"empty", "", []string{}},
		{"single", "  solo  ", []string{"solo"}},
		{"inner spaces kept", "machine learning, go", []string{"machine learning", "go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTags(tt.input)
			assert.Equal(t, tt.want, got)
			for _, tag := range got {
				assert.NotEmpty(t, tag)
			}
		})
	}
}

func TestChannelIDFromURL(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"canonical", "https://www.youtube.com/channel/UC_x5XG1OV2P6uZZ5FSM9Ttw", "UC_x5XG1OV2P6uZZ5FSM9Ttw", true},
		{"query stripped", "https://www.youtube.com/channel/UC123?view_as=subscriber", "UC123", true},
		{"trailing path stripped", "https://www.youtube.com/channel/UC123/videos", "UC123", true},
		{"handle url has no marker", "https://www.youtube.com/@golang", "", false},
		{"marker without id", "https://www.youtube.com/channel/", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ChannelIDFromURL(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkerDetector(t *testing.T) {
	d := MarkerDetector{Marker: MonetizationMarker}

	enabled, err := ParseDocument(`<html><body><script>{"a":1,"is_monetization_enabled":true}</script></body></html>`)
	require.NoError(t, err)
	disabled, err := ParseDocument(`<html><body><script>{"is_monetization_enabled":false}</script></body></html>`)
	require.NoError(t, err)

	assert.True(t, d.Monetized(enabled))
	assert.False(t, d.Monetized(disabled))
	assert.False(t, d.Monetized(nil))
	assert.False(t, MarkerDetector{}.Monetized(enabled), "empty marker never matches")
}

func TestKeywordFragment_PicksViewsAmongStatistics(t *testing.T) {
	doc, err := ParseDocument(`<html><body><table id="additional-info-container">
		<tr><td>Joined Jan 1, 2015</td></tr>
		<tr><td>1,234 VIEWS</td></tr>
		<tr><td>United States</td></tr>
	</table></body></html>`)
	require.NoError(t, err)

	v, ok := KeywordFragment("about", `#additional-info-container td`, "view").Read(doc)
	assert.True(t, ok)
	assert.Equal(t, "1,234 VIEWS", v)

	_, ok = KeywordFragment("about", `#additional-info-container td`, "subscriber").Read(doc)
	assert.False(t, ok)
}

func TestKeywordFragment_SkipsHandlesContainingKeyword(t *testing.T) {
	doc, err := ParseDocument(`<html><body><yt-content-metadata-view-model>
		<span>@techreview</span>
		<span>@videolab</span>
		<span>Subscribed</span>
		<span>98.4K subscribers</span>
		<span>1,024 videos</span>
	</yt-content-metadata-view-model></body></html>`)
	require.NoError(t, err)

	sel := `yt-content-metadata-view-model span`
	tests := []struct {
		keyword string
		want    string
		found   bool
	}{
		{"view", "", false},
		{"video", "1,024 videos", true},
		{"subscriber", "98.4K subscribers", true},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			v, ok := KeywordFragment("header-metadata", sel, tt.keyword).Read(doc)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestExtract_HandleDoesNotShadowRawFallback(t *testing.T) {
	doc, err := ParseDocument(`<html><body><yt-content-metadata-view-model>
		<span>@techreview</span>
		<span>@videolab</span>
	</yt-content-metadata-view-model>
	<script>var ytInitialData = {"viewCountText":"7,654,321 views","videosCountText":{"runs":[{"text":"88 videos"}]}};</script>
	</body></html>`)
	require.NoError(t, err)

	f := New().Extract(doc)
	assert.Equal(t, "7,654,321 views", f.TotalViews)
	assert.Equal(t, "view-count-text", f.Sources[FieldTotalViews])
	assert.Equal(t, "88 videos", f.VideoCount)
	assert.Equal(t, "videos-count-text", f.Sources[FieldVideoCount])
}

func TestRawPattern_UnescapesJSON(t *testing.T) {
	doc, err := ParseDocument(`<html><body><script>{"viewCountText":"1,000\u00a0views \u0026 more"}</script></body></html>`)
	require.NoError(t, err)

	v, ok := RawPattern("views", `"viewCountText":"([^"]+)"`).Read(doc)
	assert.True(t, ok)
	assert.Equal(t, "1,000 views & more", v)
}

func TestExtract_DecodesLocalizedCountText(t *testing.T) {
	doc, err := ParseDocument(`<html><body><script>var ytInitialData = {"subscriberCountText":{"simpleText":"12\u00a0k abonn\u00e9s"},"viewCountText":"1\u202f234\u202f567 vues"};</script></body></html>`)
	require.NoError(t, err)

	f := New().Extract(doc)
	assert.Equal(t, "12 k abonnés", f.Subscribers)
	assert.Equal(t, "subscriber-count-text", f.Sources[FieldSubscribers])
	assert.Equal(t, "1 234 567 vues", f.TotalViews)
	assert.Equal(t, "view-count-text", f.Sources[FieldTotalViews])
}

func TestRawPattern_KeepsEscapedQuotes(t *testing.T) {
	doc, err := ParseDocument(`<html><body><script>{"viewCountText":"over \"9000\" views"}</script></body></html>`)
	require.NoError(t, err)

	v, ok := RawPattern("views", `"viewCountText":"((?:[^"\\]|\\.)+)"`).Read(doc)
	assert.True(t, ok)
	assert.Equal(t, `over "9000" views`, v)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/channelscope/models"
)

type fakeAnalyzer struct {
	calls  int
	gotURL string
	record *models.ChannelRecord
	err    error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, channelURL string) (*models.ChannelRecord, error) {
	f.calls++
	f.gotURL = channelURL
	return f.record, f.err
}

func (f *fakeAnalyzer) Available() bool { return true }

func (f *fakeAnalyzer) Stats() models.SessionStats {
	return models.SessionStats{MaxSessions: 4}
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serveAnalyze(t *testing.T, a ChannelAnalyzer, rawQuery string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := gin.New()
	r.GET("/api/analyze", Analyze(a))

	req := httptest.NewRequest(http.MethodGet, "/api/analyze?"+rawQuery, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestAnalyze_RejectsInvalidURL(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing", ""},
		{"empty", "url="},
		{"not youtube", "url=" + url.QueryEscape("https://example.com/channel/UC123")},
		{"bare host", "url=" + url.QueryEscape("youtube.com")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAnalyzer{}
			w, body := serveAnalyze(t, fa, tt.query)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, map[string]any{"error": "Please provide a valid YouTube Channel URL."}, body)
			assert.Zero(t, fa.calls, "analyzer must not run for invalid input")
		})
	}
}

func TestAnalyze_Success(t *testing.T) {
	rec := models.ChannelRecord{
		Monetization: models.Monetization{Status: models.MonetizationLikelyDisabled, Checked: true},
		Tags:         []string{},
		ChannelID:    "UC_x5XG1OV2P6uZZ5FSM9Ttw",
		Thumbnail:    "",
		Earnings:     models.UnsupportedEarnings(),
		Shadowban:    models.UnsupportedShadowban(),
		ChannelInfo: models.ChannelInfo{
			Name:        "Google for Developers",
			Subscribers: "2.5M subscribers",
			TotalViews:  models.NotAvailable,
			VideoCount:  "6.1K videos",
		},
	}
	fa := &fakeAnalyzer{record: &rec}
	target := "https://www.youtube.com/@GoogleDevelopers"

	w, body := serveAnalyze(t, fa, "url="+url.QueryEscape(target))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, target, fa.gotURL)
	assert.Len(t, body, 7)
	assert.Equal(t, "UC_x5XG1OV2P6uZZ5FSM9Ttw", body["channelId"])
	assert.Equal(t, []any{}, body["tags"])
	info := body["channelInfo"].(map[string]any)
	assert.Equal(t, "N/A", info["totalViews"])
	assert.Equal(t, map[string]any{"low": "N/A", "high": "N/A"}, body["earnings"])
}

func TestBindAnalyzeRequest_HandsValidatedURLToAnalyze(t *testing.T) {
	fa := &fakeAnalyzer{record: &models.ChannelRecord{Tags: []string{}}}
	gate := 0
	r := gin.New()
	r.GET("/api/analyze", BindAnalyzeRequest(), func(c *gin.Context) {
		gate++
		c.Next()
	}, Analyze(fa))

	serve := func(rawQuery string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyze?"+rawQuery, nil))
		return w
	}

	w := serve("url=" + url.QueryEscape("https://example.com/watch"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, gate, "later middleware must not run for invalid input")

	w = serve("url=" + url.QueryEscape("  https://www.youtube.com/@go  "))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, gate)
	assert.Equal(t, "https://www.youtube.com/@go", fa.gotURL)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantPrefix string
	}{
		{
			name:       "timeout",
			err:        models.NewScrapeError(models.ErrCodeTimeout, "page did not finish loading within 1m0s", context.DeadlineExceeded),
			wantStatus: http.StatusInternalServerError,
			wantPrefix: "navigation timed out",
		},
		{
			name:       "navigation",
			err:        models.NewScrapeError(models.ErrCodeNavigation, "channel page returned HTTP 404", nil),
			wantStatus: http.StatusInternalServerError,
			wantPrefix: "navigation failed",
		},
		{
			name:       "engine unavailable",
			err:        models.NewScrapeError(models.ErrCodeEngineUnavailable, "browser binary not found", nil),
			wantStatus: http.StatusInternalServerError,
			wantPrefix: "rendering engine unavailable",
		},
		{
			name:       "busy",
			err:        models.NewScrapeError(models.ErrCodeEngineBusy, "all 4 browser sessions are busy", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantPrefix: "rendering engine busy",
		},
		{
			name:       "unknown",
			err:        errors.New("goroutine 12 [running]: secret stack"),
			wantStatus: http.StatusInternalServerError,
			wantPrefix: "internal error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAnalyzer{err: tt.err}
			w, body := serveAnalyze(t, fa, "url="+url.QueryEscape("https://www.youtube.com/@x"))

			assert.Equal(t, tt.wantStatus, w.Code)
			msg, _ := body["error"].(string)
			assert.Contains(t, msg, tt.wantPrefix)
			assert.NotContains(t, msg, "goroutine")
			assert.Len(t, body, 1)
		})
	}
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/api/health", Health(&fakeAnalyzer{}, time.Now()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.EngineAvailable)
	assert.Equal(t, 4, resp.SessionStats.MaxSessions)
	assert.Equal(t, Version, resp.Version)
}

type busyStats struct{ available bool }

func (b busyStats) Available() bool { return b.available }
func (b busyStats) Stats() models.SessionStats {
	return models.SessionStats{MaxSessions: 5, ActiveSessions: 5}
}

func TestHealth_Degraded(t *testing.T) {
	for _, sp := range []StatsProvider{busyStats{available: true}, busyStats{available: false}} {
		r := gin.New()
		r.GET("/api/health", Health(sp, time.Now()))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		var resp models.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
	}
}

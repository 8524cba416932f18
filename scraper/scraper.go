package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/channelscope/engine"
	"github.com/use-agent/channelscope/extractor"
	"github.com/use-agent/channelscope/models"
)

// Analyzer turns a channel URL into a ChannelRecord: it acquires a fresh
// session, loads the page, reads the rendered document and releases the
// session before extraction starts. It is safe for concurrent use.
type Analyzer struct {
	sessions  *engine.Manager
	navigator Navigator
	extractor *extractor.Extractor
}

// NewAnalyzer creates an Analyzer. A nil extractor selects extractor.New().
func NewAnalyzer(sessions *engine.Manager, navigator Navigator, ex *extractor.Extractor) *Analyzer {
	if ex == nil {
		ex = extractor.New()
	}
	return &Analyzer{sessions: sessions, navigator: navigator, extractor: ex}
}

// Analyze renders channelURL and extracts its record. Only acquisition and
// navigation failures are returned; missing fields degrade to placeholders.
// The session is released on every path, including panics, which are
// reported as INTERNAL_ERROR.
func (a *Analyzer) Analyze(ctx context.Context, channelURL string) (rec *models.ChannelRecord, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("analyze panicked", "url", channelURL, "panic", fmt.Sprint(r))
			rec = nil
			err = models.NewScrapeError(models.ErrCodeInternal, "analysis aborted unexpectedly", fmt.Errorf("panic: %v", r))
		}
	}()

	raw, err := a.render(ctx, channelURL)
	if err != nil {
		slog.Warn("analyze failed",
			"url", channelURL,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	doc, err := extractor.ParseDocument(raw)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "could not parse the rendered page", err)
	}

	fields := a.extractor.Extract(doc)
	record := extractor.Assemble(fields)

	slog.Info("channel analyzed",
		"url", channelURL,
		"channelId", record.ChannelID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	slog.Debug("field sources",
		"url", channelURL,
		"sources", fields.Sources,
		"layout", fmt.Sprintf("%016x", fields.Layout),
	)

	return &record, nil
}

// render returns the serialized document of the loaded page. The session
// does not outlive this call.
func (a *Analyzer) render(ctx context.Context, channelURL string) (string, error) {
	var raw string
	err := a.sessions.WithSession(ctx, func(ctx context.Context, s engine.Session) error {
		if err := a.navigator.Load(ctx, s, channelURL); err != nil {
			return err
		}
		html, err := s.Content(ctx)
		if err != nil {
			return categorizeError(err, "failed to read the rendered page")
		}
		raw = html
		return nil
	})
	return raw, err
}

// Available reports whether the rendering engine can be launched.
func (a *Analyzer) Available() bool {
	return a.sessions.Available()
}

// Stats returns a snapshot of session usage.
func (a *Analyzer) Stats() models.SessionStats {
	return a.sessions.Stats()
}

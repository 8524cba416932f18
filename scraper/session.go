package scraper

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/channelscope/config"
	"github.com/ysmood/gson"
)

// idleExcludedTypes never settle on a streaming page, so they do not count
// as in-flight requests.
var idleExcludedTypes = []proto.NetworkResourceType{
	proto.NetworkResourceTypeWebSocket,
	proto.NetworkResourceTypeEventSource,
	proto.NetworkResourceTypeMedia,
}

// navigationStatusJS reads the HTTP status of the final document without
// enabling CDP network events, which conflict with the Fetch domain.
const navigationStatusJS = `() => {
	try {
		const entries = performance.getEntriesByType("navigation");
		if (entries.length > 0) return entries[0].responseStatus || 0;
	} catch(e) {}
	return 0;
}`

// rodSession is a browser process with its single page.
type rodSession struct {
	id         int64
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	scraperCfg config.ScraperConfig
	acceptLang string

	router    *rod.HijackRouter
	closeOnce sync.Once
	closeErr  error
}

func (s *rodSession) ID() int64 { return s.id }

// Navigate loads url and waits until the page is ready. Ordering matters:
// headers and the hijack router only apply to later navigations, and the
// idle waiter must be listening before the load starts or it reports a
// false idle.
func (s *rodSession) Navigate(ctx context.Context, url string) (int, error) {
	if s.page == nil {
		return 0, errors.New("session has no page")
	}

	if s.acceptLang != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{"Accept-Language": s.acceptLang}),
		}.Call(s.page)
	}

	if s.router == nil {
		s.router = setupHijack(s.page, s.scraperCfg.BlockedResourceTypes, s.scraperCfg.BlockAds)
	}

	p := s.page.Context(ctx)
	idle := s.scraperCfg.IdleWindow

	// WaitRequestIdle and HijackRequests share the Fetch domain.
	var waitIdle func()
	if s.router == nil {
		waitIdle = p.WaitRequestIdle(idle, nil, nil, idleExcludedTypes)
	}

	if err := p.Navigate(url); err != nil {
		return 0, err
	}

	if waitIdle != nil {
		waitIdle()
	} else if err := p.WaitDOMStable(idle, 0.1); err != nil && ctx.Err() == nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"session", s.id,
			"error", err,
		)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	status := 0
	if res, err := p.Eval(navigationStatusJS); err == nil {
		status = res.Value.Int()
	}
	return status, nil
}

// Content returns the serialized rendered document.
func (s *rodSession) Content(ctx context.Context) (string, error) {
	if s.page == nil {
		return "", errors.New("session has no page")
	}
	return s.page.Context(ctx).HTML()
}

// Close stops the hijack router, closes the browser and kills its process.
// Safe to call more than once and on a partially launched session.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		if s.router != nil {
			_ = s.router.Stop()
		}
		if s.page != nil {
			_ = s.page.Close()
		}
		if s.browser != nil {
			s.closeErr = s.browser.Close()
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
	})
	return s.closeErr
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/channelscope/config"
	"github.com/use-agent/channelscope/engine"
	"github.com/use-agent/channelscope/models"
)

// RodLauncher starts one headless Chromium process per session.
// It is safe for concurrent use.
type RodLauncher struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
}

var _ engine.Launcher = (*RodLauncher)(nil)

// NewRodLauncher creates a launcher for the given browser and scraper config.
func NewRodLauncher(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) *RodLauncher {
	return &RodLauncher{browserCfg: browserCfg, scraperCfg: scraperCfg}
}

// Name implements engine.Launcher.
func (r *RodLauncher) Name() string { return "rod" }

// Available implements engine.Launcher.
func (r *RodLauncher) Available() bool {
	_, err := ResolveBrowserBin(r.browserCfg.BrowserBin)
	return err == nil
}

// ResolveBrowserBin locates the Chromium executable. An explicit path must
// point at an executable regular file; otherwise the usual install
// locations are searched. It never downloads a browser.
func ResolveBrowserBin(explicit string) (string, error) {
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", fmt.Errorf("browser binary %q: %w", explicit, err)
		}
		if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
			return "", fmt.Errorf("browser binary %q is not an executable file", explicit)
		}
		return explicit, nil
	}
	if path, ok := launcher.LookPath(); ok {
		return path, nil
	}
	return "", fmt.Errorf("no Chromium or Chrome executable found; set CHANNELSCOPE_BROWSER_BIN")
}

// Launch implements engine.Launcher. Anything started before a failure is
// torn down before returning.
func (r *RodLauncher) Launch(ctx context.Context, id int64) (engine.Session, error) {
	bin, err := ResolveBrowserBin(r.browserCfg.BrowserBin)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeEngineUnavailable, "browser binary not found", err)
	}

	l := r.newProcess(bin)
	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		// Cleanup would block on a process that never started.
		l.Kill()
		_ = os.RemoveAll(l.Get(flags.UserDataDir))
		return nil, launchFailure(ctx, err)
	}

	s := &rodSession{
		id:         id,
		launcher:   l,
		scraperCfg: r.scraperCfg,
		acceptLang: r.browserCfg.AcceptLanguage,
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		_ = s.Close()
		return nil, models.NewScrapeError(models.ErrCodeEngineUnavailable, "failed to connect to browser", err)
	}
	s.browser = browser

	if r.browserCfg.IgnoreCertErrors {
		if err := browser.IgnoreCertErrors(true); err != nil {
			slog.Warn("ignore-cert-errors not applied", "session", id, "error", err)
		}
	}

	var page *rod.Page
	if r.browserCfg.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		_ = s.Close()
		return nil, models.NewScrapeError(models.ErrCodeEngineUnavailable, "failed to create page", err)
	}
	s.page = page

	slog.Debug("browser launched", "session", id, "controlURL", controlURL)
	return s, nil
}

// launchFailure classifies a failed process start. A request that timed out
// or went away while the browser was starting is not an engine fault.
func launchFailure(ctx context.Context, err error) *models.ScrapeError {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return categorizeError(ctxErr, "browser launch did not finish in time")
	}
	return models.NewScrapeError(models.ErrCodeEngineUnavailable, "failed to launch browser", err)
}

// newProcess builds the launcher for one browser process.
func (r *RodLauncher) newProcess(bin string) *launcher.Launcher {
	l := launcher.New().
		Bin(bin).
		Headless(r.browserCfg.Headless).
		NoSandbox(r.browserCfg.NoSandbox)

	if r.browserCfg.DefaultProxy != "" {
		l = l.Proxy(r.browserCfg.DefaultProxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("no-first-run"))
	if r.browserCfg.IgnoreCertErrors {
		l.Set(flags.Flag("ignore-certificate-errors"))
	}
	return l
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3001, PORT overrides CHANNELSCOPE_PORT
	Mode string // "debug", "release", "test"; default: "release"

	// ShutdownTimeout bounds the drain of in-flight requests on SIGTERM.
	ShutdownTimeout time.Duration // default: 10s
}

// BrowserConfig controls how each rendering session's browser is launched.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker and most CI hosts).
	NoSandbox bool // default: true

	// IgnoreCertErrors relaxes TLS validation for the rendered page.
	IgnoreCertErrors bool // default: true

	// Stealth injects the go-rod stealth script before navigation.
	Stealth bool // default: true

	// BrowserBin overrides the Chromium binary path. When empty the
	// launcher searches the usual install locations.
	BrowserBin string

	// DefaultProxy is the proxy URL passed to every browser.
	DefaultProxy string

	// AcceptLanguage is sent with every navigation to keep markup in one locale.
	AcceptLanguage string // default: "en-US,en;q=0.9"
}

// ScraperConfig controls navigation behavior.
type ScraperConfig struct {
	// NavigationTimeout bounds load + readiness wait.
	NavigationTimeout time.Duration // default: 60s

	// IdleWindow is the quiet period required before a page counts as loaded.
	IdleWindow time.Duration // default: 500ms

	// BlockedResourceTypes lists resource types to block, e.g. "Image", "Font".
	// default: none
	BlockedResourceTypes []string

	// BlockAds drops requests to well-known ad and tracking domains.
	BlockAds bool // default: false
}

// SessionConfig controls the admission gate in front of the session manager.
type SessionConfig struct {
	// MaxSessions is the number of browsers allowed to run at once.
	MaxSessions int // default: 4

	// QueueTimeout is how long a request may wait for a free slot.
	QueueTimeout time.Duration // default: 30s
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// Enabled toggles the limiter.
	Enabled bool // default: true

	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per client IP.
	Burst int // default: 5
}

// CORSConfig controls cross-origin access for the front-end.
type CORSConfig struct {
	// AllowOrigins lists accepted origins; "*" allows any.
	AllowOrigins []string // default: ["*"]
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            envOr("CHANNELSCOPE_HOST", "0.0.0.0"),
			Port:            envIntOr("PORT", envIntOr("CHANNELSCOPE_PORT", 3001)),
			Mode:            envOr("CHANNELSCOPE_MODE", "release"),
			ShutdownTimeout: envDurationOr("CHANNELSCOPE_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:         envBoolOr("CHANNELSCOPE_HEADLESS", true),
			NoSandbox:        envBoolOr("CHANNELSCOPE_NO_SANDBOX", true),
			IgnoreCertErrors: envBoolOr("CHANNELSCOPE_IGNORE_CERT_ERRORS", true),
			Stealth:          envBoolOr("CHANNELSCOPE_STEALTH", true),
			BrowserBin:       os.Getenv("CHANNELSCOPE_BROWSER_BIN"),
			DefaultProxy:     os.Getenv("CHANNELSCOPE_PROXY"),
			AcceptLanguage:   envOr("CHANNELSCOPE_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
		},
		Scraper: ScraperConfig{
			NavigationTimeout:    envDurationOr("CHANNELSCOPE_NAV_TIMEOUT", 60*time.Second),
			IdleWindow:           envDurationOr("CHANNELSCOPE_IDLE_WINDOW", 500*time.Millisecond),
			BlockedResourceTypes: envSliceOr("CHANNELSCOPE_BLOCKED_RESOURCES", nil),
			BlockAds:             envBoolOr("CHANNELSCOPE_BLOCK_ADS", false),
		},
		Session: SessionConfig{
			MaxSessions:  envIntOr("CHANNELSCOPE_MAX_SESSIONS", 4),
			QueueTimeout: envDurationOr("CHANNELSCOPE_QUEUE_TIMEOUT", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:           envBoolOr("CHANNELSCOPE_RATE_ENABLED", true),
			RequestsPerSecond: envFloatOr("CHANNELSCOPE_RATE_RPS", 1.0),
			Burst:             envIntOr("CHANNELSCOPE_RATE_BURST", 5),
		},
		CORS: CORSConfig{
			AllowOrigins: envSliceOr("CHANNELSCOPE_CORS_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  envOr("CHANNELSCOPE_LOG_LEVEL", "info"),
			Format: envOr("CHANNELSCOPE_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

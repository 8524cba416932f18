package engine

import (
	"context"
)

// Session is one disposable rendering session: a browser process with a
// single page, owned by exactly one request.
type Session interface {
	// ID identifies the session in logs.
	ID() int64

	// Navigate loads url and blocks until the page is ready or ctx ends.
	// It returns the HTTP status of the final document, or 0 if unknown.
	Navigate(ctx context.Context, url string) (int, error)

	// Content returns the serialized rendered document.
	Content(ctx context.Context) (string, error)

	// Close terminates the browser process. It must be safe to call more
	// than once.
	Close() error
}

// Launcher starts rendering sessions.
type Launcher interface {
	// Name returns the launcher identifier (e.g. "rod").
	Name() string

	// Available reports whether the rendering engine binary can be located.
	Available() bool

	// Launch starts a new session. It fails with an ENGINE_UNAVAILABLE
	// ScrapeError when the binary cannot be resolved or started.
	Launch(ctx context.Context, id int64) (Session, error)
}

package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/use-agent/channelscope/engine"
	"github.com/use-agent/channelscope/models"
)

// Navigator drives a session to a loaded page under a fixed time bound.
// It never retries.
type Navigator struct {
	Timeout time.Duration
}

// Load navigates s to url and waits for readiness. Failures are returned as
// NAVIGATION_TIMEOUT or NAVIGATION_FAILED ScrapeErrors.
func (n Navigator) Load(ctx context.Context, s engine.Session, url string) error {
	navCtx := ctx
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	status, err := s.Navigate(navCtx, url)
	if err == nil {
		err = navCtx.Err()
	}
	if err != nil {
		if ctx.Err() == nil && navCtx.Err() != nil {
			return models.NewScrapeError(
				models.ErrCodeTimeout,
				fmt.Sprintf("page did not finish loading within %s", n.Timeout),
				err,
			)
		}
		return categorizeError(err, "could not load the channel page")
	}

	if status != 0 && (status < 200 || status > 299) {
		return models.NewScrapeError(
			models.ErrCodeNavigation,
			fmt.Sprintf("channel page returned HTTP %d", status),
			nil,
		)
	}
	return nil
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}

// Package crawler fetches upstream feeds and event listings as raw source records.
package crawler

import (
	"context"
	"errors"
	"fmt"

	"feedsync/internal/config"
	"feedsync/internal/logger"
	"feedsync/internal/models"
)

// ErrUnsupportedSourceKind is returned for a source kind the client cannot fetch.
var ErrUnsupportedSourceKind = errors.New("unsupported source kind")

// Client fetches source records for configured sources.
type Client struct {
	scraper *Scraper
	log     *logger.Logger
}

// NewClient creates a crawler client whose scraper follows the retry policy.
func NewClient(policy *config.RetryPolicy, log *logger.Logger) *Client {
	return NewClientWithDeps(NewScraperWithConfig(policy), log)
}

// NewClientWithDeps creates a new crawler client with injected dependencies.
func NewClientWithDeps(scraper *Scraper, log *logger.Logger) *Client {
	return &Client{
		scraper: scraper,
		log:     log,
	}
}

// FetchSource fetches every raw record for one source, in upstream order.
func (c *Client) FetchSource(ctx context.Context, src config.SourceConfig) ([]models.SourceRecord, error) {
	var (
		records []models.SourceRecord
		err     error
	)

	switch src.Kind {
	case config.KindFeed:
		records, err = c.fetchFeed(ctx, src.FeedURL)
	case config.KindEvents:
		records, err = c.fetchEvents(ctx, src.Events)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSourceKind, src.Kind)
	}

	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	c.log.Debug("fetched source", "source", src.Name, "records", len(records))

	return records, nil
}

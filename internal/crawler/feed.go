package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"feedsync/internal/models"

	"github.com/mmcdole/gofeed"
)

const feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"

func (c *Client) fetchFeed(ctx context.Context, url string) ([]models.SourceRecord, error) {
	body, err := c.scraper.Fetch(ctx, url, http.Header{"Accept": {feedAccept}})
	if err != nil {
		return nil, err
	}

	return ParseFeed(body)
}

// ParseFeed converts an RSS or Atom document into source records.
func ParseFeed(body []byte) ([]models.SourceRecord, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	records := make([]models.SourceRecord, 0, len(feed.Items))

	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		records = append(records, feedRecord(item))
	}

	return records, nil
}

func feedRecord(item *gofeed.Item) models.SourceRecord {
	rec := models.SourceRecord{
		Kind:        models.KindPost,
		Title:       item.Title,
		Link:        item.Link,
		Published:   item.Published,
		BodyHTML:    item.Content,
		Description: item.Description,
		Tags:        item.Categories,
	}

	if rec.Link == "" && strings.HasPrefix(item.GUID, "http") {
		rec.Link = item.GUID
	}

	if rec.Published == "" {
		rec.Published = item.Updated
	}

	if rec.BodyHTML == "" {
		rec.BodyHTML = item.Description
	}

	if item.Image != nil {
		rec.ImageURL = item.Image.URL
	}

	if rec.ImageURL == "" {
		for _, enc := range item.Enclosures {
			if enc != nil && strings.HasPrefix(enc.Type, "image/") {
				rec.ImageURL = enc.URL

				break
			}
		}
	}

	return rec
}

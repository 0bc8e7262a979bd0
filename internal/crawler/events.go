package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"feedsync/internal/config"
	"feedsync/internal/models"
)

// Event listing statuses requested from the events API.
const (
	StatusUpcoming = "live"
	StatusPast     = "ended"
)

const defaultMaxPages = 10

type eventsPage struct {
	Events     []eventObject `json:"events"`
	Pagination struct {
		Continuation string `json:"continuation"`
		HasMoreItems bool   `json:"has_more_items"`
	} `json:"pagination"`
}

type eventObject struct {
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	Description struct {
		HTML string `json:"html"`
	} `json:"description"`
	Start struct {
		Local string `json:"local"`
	} `json:"start"`
	Logo *struct {
		URL string `json:"url"`
	} `json:"logo"`
	Category *struct {
		Name string `json:"name"`
	} `json:"category"`
	Venue *struct {
		Name string `json:"name"`
	} `json:"venue"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
	Status  string `json:"status"`
}

type listing struct {
	status       string
	continuation string
	pages        int
	hasMore      bool
}

// fetchEvents requests the upcoming listing, then the past listing, then
// follows continuation tokens, one request at a time.
func (c *Client) fetchEvents(ctx context.Context, api config.EventsAPI) ([]models.SourceRecord, error) {
	listings := []*listing{{status: StatusUpcoming}}
	if api.IncludePast {
		listings = append(listings, &listing{status: StatusPast})
	}

	maxPages := api.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	var records []models.SourceRecord

	for _, l := range listings {
		page, err := c.fetchEventsPage(ctx, api, l.status, "")
		if err != nil {
			return nil, err
		}

		records = append(records, eventRecords(page)...)
		l.pages = 1
		l.hasMore = page.Pagination.HasMoreItems
		l.continuation = page.Pagination.Continuation
	}

	for _, l := range listings {
		for l.hasMore && l.continuation != "" && l.pages < maxPages {
			page, err := c.fetchEventsPage(ctx, api, l.status, l.continuation)
			if err != nil {
				return nil, err
			}

			records = append(records, eventRecords(page)...)
			l.pages++
			l.hasMore = page.Pagination.HasMoreItems
			l.continuation = page.Pagination.Continuation
		}

		if l.hasMore && l.pages >= maxPages {
			c.log.Warn("event listing truncated", "status", l.status, "pages", l.pages)
		}
	}

	return records, nil
}

func (c *Client) fetchEventsPage(ctx context.Context, api config.EventsAPI, status, continuation string) (*eventsPage, error) {
	endpoint := EventsURL(api, status, continuation)

	header := http.Header{"Accept": {"application/json"}}
	if api.Token != "" {
		header.Set("Authorization", "Bearer "+api.Token)
	}

	body, err := c.scraper.Fetch(ctx, endpoint, header)
	if err != nil {
		return nil, err
	}

	var page eventsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode events page: %w", err)
	}

	return &page, nil
}

// EventsURL builds the organization events endpoint for one listing page.
func EventsURL(api config.EventsAPI, status, continuation string) string {
	q := url.Values{}
	q.Set("status", status)
	q.Set("expand", "venue,category")

	if status == StatusPast {
		q.Set("order_by", "start_desc")
	} else {
		q.Set("order_by", "start_asc")
	}

	if continuation != "" {
		q.Set("continuation", continuation)
	}

	base := strings.TrimRight(api.APIURL, "/")

	return fmt.Sprintf("%s/organizations/%s/events/?%s", base, url.PathEscape(api.OrganizationID), q.Encode())
}

func eventRecords(page *eventsPage) []models.SourceRecord {
	records := make([]models.SourceRecord, 0, len(page.Events))

	for _, ev := range page.Events {
		rec := models.SourceRecord{
			Kind:        models.KindEvent,
			Title:       ev.Name.Text,
			Link:        ev.URL,
			Published:   ev.Start.Local,
			BodyHTML:    ev.Description.HTML,
			Description: ev.Summary,
			Status:      ev.Status,
		}

		if ev.Logo != nil {
			rec.ImageURL = ev.Logo.URL
		}

		if ev.Category != nil && ev.Category.Name != "" {
			rec.Tags = []string{ev.Category.Name}
		}

		if ev.Venue != nil {
			rec.Venue = ev.Venue.Name
		}

		records = append(records, rec)
	}

	return records
}

package faresource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ngworks1909/pulse-backend/core/logger"
	"github.com/ngworks1909/pulse-backend/core/model"
)

const defaultBaseURL = "https://www.redbus.in/rpw/api/searchResults"

// Config holds settings for the redbus search client.
type Config struct {
	// BaseURL points at the search endpoint. Overridden in tests.
	BaseURL string `json:"base_url"`
	// Limit caps the number of services returned per search.
	Limit          int `json:"limit"`
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Limit <= 0 {
		c.Limit = 25
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Client queries the redbus search API for live fares. It implements
// fare.Source.
type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
}

// NewClient creates a redbus search client.
func NewClient(cfg Config, log logger.Logger) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:  log,
	}
}

// searchResponse mirrors the subset of the search payload we consume.
type searchResponse struct {
	Data struct {
		Inventories []inventory `json:"inventories"`
	} `json:"data"`
}

type inventory struct {
	TravelsName   string    `json:"travelsName"`
	BusType       string    `json:"busType"`
	DepartureTime string    `json:"departureTime"`
	FareList      []float64 `json:"fareList"`
}

// Quotes fetches the services for a route and date and flattens every fare
// class of every service into one quote each. date uses "02-Jan-2006".
func (c *Client) Quotes(ctx context.Context, originCode, destinationCode, date string) ([]model.Quote, error) {
	q := url.Values{}
	q.Set("fromCity", originCode)
	q.Set("toCity", destinationCode)
	q.Set("DOJ", date)
	q.Set("limit", fmt.Sprintf("%d", c.cfg.Limit))
	q.Set("offset", "0")
	q.Set("meta", "true")
	q.Set("groupId", "0")
	q.Set("sectionId", "0")
	q.Set("sort", "0")
	q.Set("sortOrder", "0")
	q.Set("from", "initialLoad")
	q.Set("getUuid", "true")
	q.Set("bT", "1")
	endpoint := c.cfg.BaseURL + "?" + q.Encode()

	// the search endpoint expects POST with an empty body
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.log != nil {
		c.log.Debugf("fetching fares %s-%s on %s", originCode, destinationCode, date)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var search searchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var quotes []model.Quote
	for _, inv := range search.Data.Inventories {
		for _, f := range inv.FareList {
			quotes = append(quotes, model.Quote{
				Operator:  inv.TravelsName,
				BusType:   inv.BusType,
				Departure: inv.DepartureTime,
				Fare:      f,
			})
		}
	}
	return quotes, nil
}

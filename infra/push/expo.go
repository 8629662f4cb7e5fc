package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ngworks1909/pulse-backend/core/logger"
	"github.com/ngworks1909/pulse-backend/core/notify"
)

const (
	defaultEndpoint = "https://exp.host/--/api/v2/push/send"
	// Expo recommends batches of at most 100 messages per request.
	defaultChunkSize = 100
)

// Config holds settings for the Expo push client.
type Config struct {
	Endpoint       string `json:"endpoint"`
	ChunkSize      int    `json:"chunk_size"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Client delivers push notifications through the Expo push HTTP API. It
// implements notify.Notifier.
type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
}

// NewClient creates an Expo push client.
func NewClient(cfg Config, log logger.Logger) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:  log,
	}
}

// pushMessage is the Expo wire format for one notification.
type pushMessage struct {
	To        string            `json:"to"`
	Sound     string            `json:"sound"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	ChannelID string            `json:"channelId"`
	Priority  string            `json:"priority"`
}

// ticketResponse mirrors the per-message tickets returned by the API.
type ticketResponse struct {
	Data []struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Details struct {
			Error string `json:"error"`
		} `json:"details"`
	} `json:"data"`
}

// Send fans the message out to every token, chunked into provider-sized
// batches. A chunk-level transport failure yields transient receipts for that
// chunk and does not stop the remaining chunks.
func (c *Client) Send(ctx context.Context, tokens []string, msg notify.Message) ([]notify.Receipt, error) {
	if c.log != nil {
		c.log.Debugf("sending %q to %d tokens", msg.Title, len(tokens))
	}
	receipts := make([]notify.Receipt, 0, len(tokens))
	var errs []error
	for start := 0; start < len(tokens); start += c.cfg.ChunkSize {
		end := start + c.cfg.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[start:end]
		recs, err := c.sendChunk(ctx, chunk, msg)
		if err != nil {
			errs = append(errs, err)
		}
		receipts = append(receipts, recs...)
	}
	return receipts, errors.Join(errs...)
}

func (c *Client) sendChunk(ctx context.Context, tokens []string, msg notify.Message) ([]notify.Receipt, error) {
	messages := make([]pushMessage, len(tokens))
	for i, tok := range tokens {
		messages[i] = pushMessage{
			To:        tok,
			Sound:     "default",
			Title:     msg.Title,
			Body:      msg.Body,
			Data:      msg.Data,
			ChannelID: "bus_alerts",
			Priority:  "high",
		}
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return transientAll(tokens, err.Error()), fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return transientAll(tokens, err.Error()), fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transientAll(tokens, err.Error()), fmt.Errorf("failed to send push chunk: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		reason := fmt.Sprintf("status %d", resp.StatusCode)
		return transientAll(tokens, reason), fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	var tickets ticketResponse
	if err := json.NewDecoder(resp.Body).Decode(&tickets); err != nil {
		return transientAll(tokens, err.Error()), fmt.Errorf("failed to decode tickets: %w", err)
	}
	if len(tickets.Data) != len(tokens) {
		reason := fmt.Sprintf("got %d tickets for %d messages", len(tickets.Data), len(tokens))
		return transientAll(tokens, reason), errors.New("ticket count mismatch: " + reason)
	}

	// tickets are index-aligned with the submitted messages
	receipts := make([]notify.Receipt, len(tokens))
	for i, ticket := range tickets.Data {
		rec := notify.Receipt{Token: tokens[i]}
		switch {
		case ticket.Status == "ok":
			rec.Outcome = notify.Delivered
		case ticket.Details.Error == "DeviceNotRegistered" || ticket.Details.Error == "InvalidCredentials":
			rec.Outcome = notify.RejectedPermanent
			rec.Reason = ticket.Details.Error
		default:
			rec.Outcome = notify.RejectedTransient
			rec.Reason = ticket.Details.Error
			if rec.Reason == "" {
				rec.Reason = ticket.Message
			}
		}
		receipts[i] = rec
	}
	return receipts, nil
}

func transientAll(tokens []string, reason string) []notify.Receipt {
	recs := make([]notify.Receipt, len(tokens))
	for i, tok := range tokens {
		recs[i] = notify.Receipt{Token: tok, Outcome: notify.RejectedTransient, Reason: reason}
	}
	return recs
}

// Package eventsource fetches events from an OpenAI-compatible chat
// completions API. The model is asked for a JSON object and the reply is
// decoded strictly; anything that does not match the expected shape is an
// error. Each call makes exactly one request.
package eventsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/machi-events/eventfinder/internal/model"
)

var (
	// ErrUnavailable covers transport failures and non-200 responses.
	ErrUnavailable = errors.New("event source unavailable")
	// ErrInvalidResponse means the reply did not match the expected contract.
	ErrInvalidResponse = errors.New("event source returned an invalid response")
)

// Config selects the endpoint and model.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to the chat completions endpoint.
type Client struct {
	client *resty.Client
	model  string
	log    zerolog.Logger
}

// New creates a Client. A zero Timeout means 60 seconds.
func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}
	return &Client{client: c, model: cfg.Model, log: log.With().Str("component", "eventsource").Logger()}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

// chatResponse is intentionally loose: providers add fields to the envelope.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Search returns events in the query's date range and optional district.
func (c *Client) Search(ctx context.Context, q model.EventQuery) ([]model.Event, error) {
	content, err := c.complete(ctx, searchPrompt(q))
	if err != nil {
		return nil, err
	}
	events, err := decodeSearch(content)
	if err != nil {
		c.log.Warn().Err(err).Str("from", q.DateFrom).Str("to", q.DateTo).Msg("rejecting search response")
		return nil, err
	}
	c.log.Debug().Int("count", len(events)).Str("from", q.DateFrom).Str("to", q.DateTo).Msg("search complete")
	return events, nil
}

// Lookup returns the event with the given ID, or model.ErrNotFound when the
// source reports none.
func (c *Client) Lookup(ctx context.Context, id string) (*model.Event, error) {
	content, err := c.complete(ctx, lookupPrompt(id))
	if err != nil {
		return nil, err
	}
	ev, err := decodeLookup(content, id)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		c.log.Warn().Err(err).Str("event_id", id).Msg("rejecting lookup response")
	}
	return ev, err
}

// HealthPing implements health.HealthPinger by listing models.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/models")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	return nil
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	body := chatRequest{
		Model:          c.model,
		Messages:       messages,
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    0.2,
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.Error().Int("status", resp.StatusCode()).Dur("elapsed", time.Since(start)).Msg("chat completion failed")
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return "", fmt.Errorf("%w: decode envelope: %v", ErrInvalidResponse, err)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no message content", ErrInvalidResponse)
	}
	return cr.Choices[0].Message.Content, nil
}

// ABOUTME: REST client for the rally backend API
// ABOUTME: Fetches conversation/campaign collections and issues deletes
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rallyhq/rally/models"
)

const (
	// DefaultTimeout is the caller-side deadline for a single API call.
	// Timeouts are enforced here, not by socket cancellation.
	DefaultTimeout = 15 * time.Second

	maxResponseBytes = 8 << 20
)

// Client talks to the rally backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	http       *http.Client
	token      func() string
	classifier *Classifier
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenSource sets the bearer-token provider. An empty return value
// sends the request unauthenticated.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

// WithOfflineProbe installs a host-connectivity check consulted before any
// other fault classification.
func WithOfflineProbe(fn func() bool) Option {
	return func(c *Client) { c.classifier = &Classifier{Offline: fn} }
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: DefaultTimeout},
		classifier: &Classifier{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListConversations fetches the conversation collection, newest first.
func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	body, err := c.get(ctx, "/conversations")
	if err != nil {
		return nil, err
	}
	items, err := models.DecodeCollection[models.Conversation](body)
	if err != nil {
		return nil, &Fault{Kind: FaultUnknown, Err: err}
	}
	return items, nil
}

// ListCampaigns fetches the campaign collection, newest first.
func (c *Client) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	body, err := c.get(ctx, "/campaigns")
	if err != nil {
		return nil, err
	}
	items, err := models.DecodeCollection[models.Campaign](body)
	if err != nil {
		return nil, &Fault{Kind: FaultUnknown, Err: err}
	}
	return items, nil
}

// FetchCredits fetches the account's credit balance.
func (c *Client) FetchCredits(ctx context.Context) (*models.Credits, error) {
	body, err := c.get(ctx, "/credits")
	if err != nil {
		return nil, err
	}
	var credits models.Credits
	if err := json.Unmarshal(body, &credits); err != nil {
		return nil, &Fault{Kind: FaultUnknown, Err: fmt.Errorf("failed to decode credits: %w", err)}
	}
	return &credits, nil
}

// FetchDashboard fetches the aggregate dashboard document.
func (c *Client) FetchDashboard(ctx context.Context) (*models.DashboardStats, error) {
	body, err := c.get(ctx, "/dashboard")
	if err != nil {
		return nil, err
	}
	var stats models.DashboardStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, &Fault{Kind: FaultUnknown, Err: fmt.Errorf("failed to decode dashboard: %w", err)}
	}
	return &stats, nil
}

// DeleteConversation deletes a conversation by id. Any non-error HTTP
// status counts as success; the backend cascades the paired campaign.
func (c *Client) DeleteConversation(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/conversations/%d", id))
}

// DeleteCampaign deletes a campaign by id. Any non-error HTTP status
// counts as success; the backend cascades the originating conversation.
func (c *Client) DeleteCampaign(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/campaigns/%d", id))
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classifier.Classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.classifier.Classify(err)
	}
	if resp.StatusCode >= 400 {
		return nil, ClassifyStatus(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	token, err := decodeToken(body)
	if err != nil {
		return nil, &Fault{Kind: FaultUnknown, Err: err}
	}
	return token, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classifier.Classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.classifier.Classify(err)
	}
	if resp.StatusCode >= 400 {
		return nil, ClassifyStatus(resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.classifier.Classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return ClassifyStatus(resp.StatusCode, strings.TrimSpace(string(body)))
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
}

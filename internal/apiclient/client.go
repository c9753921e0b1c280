// Package apiclient talks to the Apiverse listing API.
// It performs exactly one request per call; nothing is retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Apiverse/internal/core/engagement"
	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/upvotes"
)

// DefaultTimeout bounds every request when no http.Client is supplied
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read
const maxErrorBody = 64 * 1024

// Option configures a Client
type Option func(*Client)

// WithToken sends token as a Bearer credential on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the underlying http.Client timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client calls the listing endpoints
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

var (
	_ engagement.Toggler       = (*Client)(nil)
	_ engagement.ListingSource = (*Client)(nil)
)

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListListings fetches the full collection in the given order
func (c *Client) ListListings(ctx context.Context, sort listings.Sort) ([]listings.Listing, error) {
	path := "/listings"
	if sort != listings.SortDefault {
		path += "?sort=" + url.QueryEscape(string(sort))
	}

	var out listings.ListResponse
	if err := c.do(ctx, http.MethodGet, path, &out, "list listings"); err != nil {
		return nil, err
	}
	if out.Listings == nil {
		out.Listings = []listings.Listing{}
	}
	return out.Listings, nil
}

// GetListing fetches a single listing
func (c *Client) GetListing(ctx context.Context, id string) (*listings.Listing, error) {
	var out listings.Listing
	if err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), &out, "get listing"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Like applies +1 and returns the authoritative counter
func (c *Client) Like(ctx context.Context, listingID string) (int64, error) {
	return c.toggle(ctx, listingID, upvotes.DirectionLike)
}

// Unlike applies -1 and returns the authoritative counter
func (c *Client) Unlike(ctx context.Context, listingID string) (int64, error) {
	return c.toggle(ctx, listingID, upvotes.DirectionUnlike)
}

func (c *Client) toggle(ctx context.Context, listingID string, direction upvotes.Direction) (int64, error) {
	path := fmt.Sprintf("/listings/%s/%s", url.PathEscape(listingID), direction)

	var out upvotes.ToggleResponse
	if err := c.do(ctx, http.MethodPost, path, &out, string(direction)+" listing"); err != nil {
		return 0, err
	}
	return out.UpvoteCount, nil
}

func (c *Client) do(ctx context.Context, method, path string, out any, operation string) error {
	var body io.Reader
	if method == http.MethodPost {
		body = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", operation, ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return wrapAPIError(apiErr, operation)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

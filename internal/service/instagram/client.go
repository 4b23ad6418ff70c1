package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Voridan/giveaway-platform/internal/common/errors"
)

const (
	serviceName      = "instagram comments api"
	commentsEndpoint = "/instagram/media/get_comments"
)

// Config describes the RapidAPI-hosted comments source
type Config struct {
	BaseURL string
	APIKey  string
	APIHost string
	Timeout time.Duration
}

// Client fetches post comments from the RocketAPI Instagram endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiHost    string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		apiHost:    cfg.APIHost,
	}
}

// CommentsPage is one page of commenters
type CommentsPage struct {
	Usernames []string
	// NextMinID is nil on the last page
	NextMinID *string
}

type commentsRequest struct {
	ID                  string  `json:"id"`
	MinID               *string `json:"min_id"`
	CanSupportThreading bool    `json:"can_support_threading"`
}

type rocketResponse[T any] struct {
	Status   string `json:"status"`
	Response struct {
		StatusCode int `json:"status_code"`
		Body       T   `json:"body"`
	} `json:"response"`
}

type commentsBody struct {
	Comments []struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	} `json:"comments"`
	NextMinID *string `json:"next_min_id"`
}

// FetchComments requests one page of comments. minID is nil for the first page.
// Transport failures and non-2xx answers come back as UPSTREAM_UNAVAILABLE or
// RATE_LIMIT_EXCEEDED application errors.
func (c *Client) FetchComments(ctx context.Context, mediaID string, minID *string) (*CommentsPage, error) {
	var result rocketResponse[commentsBody]
	req := commentsRequest{ID: mediaID, MinID: minID, CanSupportThreading: false}
	if err := c.makeRequest(ctx, http.MethodPost, c.baseURL+commentsEndpoint, req, &result); err != nil {
		return nil, err
	}

	page := &CommentsPage{Usernames: make([]string, 0, len(result.Response.Body.Comments))}
	for _, cm := range result.Response.Body.Comments {
		if cm.User.Username != "" {
			page.Usernames = append(page.Usernames, cm.User.Username)
		}
	}
	if next := result.Response.Body.NextMinID; next != nil && *next != "" {
		v := *next
		page.NextMinID = &v
	}
	return page, nil
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError(serviceName, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		return apperrors.NewRateLimitError(serviceName, retryAfter(resp)).WithDetail("status", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.NewUpstreamError(serviceName, resp.StatusCode,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		return apperrors.NewUpstreamError(serviceName, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return d
		}
	}
	return 0
}

// StatusOf extracts the upstream HTTP status recorded on an error, 0 if none
func StatusOf(err error) int {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return 0
	}
	if s, ok := appErr.Details["status"].(int); ok {
		return s
	}
	return 0
}

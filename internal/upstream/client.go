// Package upstream reads the published Well-Architected Framework: the
// question list in the framework appendix and individual question pages.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leapstack-labs/wadocs/internal/catalog"
)

// Defaults for the public AWS documentation.
const (
	DefaultAppendixURL = "https://docs.aws.amazon.com/wellarchitected/latest/framework/appendix.html"
	DefaultQuestionURL = "https://docs.aws.amazon.com/wellarchitected/latest/framework/%s.html"
	DefaultTimeout     = 30 * time.Second
)

// ErrUnexpectedStatus is wrapped by errors for non-200 responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Config configures a Client.
type Config struct {
	AppendixURL string
	QuestionURL string // fmt pattern receiving e.g. "cost-02"
	Timeout     time.Duration
	HTTP        *http.Client
	Logger      *slog.Logger
}

// Client fetches framework pages.
type Client struct {
	http        *http.Client
	appendixURL string
	questionURL string
	logger      *slog.Logger
}

// New creates a client, filling unset fields with the public defaults.
func New(cfg Config) *Client {
	c := &Client{
		http:        cfg.HTTP,
		appendixURL: cfg.AppendixURL,
		questionURL: cfg.QuestionURL,
		logger:      cfg.Logger,
	}
	if c.appendixURL == "" {
		c.appendixURL = DefaultAppendixURL
	}
	if c.questionURL == "" {
		c.questionURL = DefaultQuestionURL
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// QuestionPageURL returns the framework page URL for a question ID.
func (c *Client) QuestionPageURL(id string) (string, error) {
	m := catalog.QuestionIDPattern.FindStringSubmatch(id)
	if m == nil {
		return "", fmt.Errorf("%q is not a question ID", id)
	}
	return fmt.Sprintf(c.questionURL, strings.ToLower(m[1])+"-"+m[2]), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "wadocs (+https://github.com/leapstack-labs/wadocs)")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("fetched", "url", url, "status", resp.StatusCode, "duration", time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %w: %d", url, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

var (
	// ErrStatus wraps every non-2xx response from the backend.
	ErrStatus = errors.New("unexpected status")
	// ErrMalformed is returned when a response body is not the expected JSON.
	ErrMalformed = errors.New("malformed response")
)

const (
	defaultTimeout         = 10 * time.Second
	defaultRetries         = 3
	defaultInitialInterval = 200 * time.Millisecond
	maxBodySize            = 32 << 20
)

// Client talks to the document backend's listing, metadata and search endpoints.
type Client struct {
	baseURL         *url.URL
	httpClient      *http.Client
	timeout         time.Duration
	retries         uint64
	initialInterval time.Duration
	log             logrus.FieldLogger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every single attempt.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n uint64) ClientOption {
	return func(c *Client) {
		c.retries = n
	}
}

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.initialInterval = d
	}
}

// WithLogger sets the logger used for retry notices.
func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q must be http or https", baseURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	c := &Client{
		baseURL:         u,
		httpClient:      http.DefaultClient,
		timeout:         defaultTimeout,
		retries:         defaultRetries,
		initialInterval: defaultInitialInterval,
		log:             logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name implements Provider.
func (c *Client) Name() string {
	return "backend " + c.baseURL.String()
}

// Files fetches the {url, id} listing from GET /files.
func (c *Client) Files(ctx context.Context) ([]models.FileRecord, error) {
	body, err := c.get(ctx, nil, "files")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	files := gjson.GetBytes(body, "files")
	if !files.IsArray() {
		return nil, fmt.Errorf("list files: %w: missing files array", ErrMalformed)
	}

	var records []models.FileRecord
	files.ForEach(func(_, f gjson.Result) bool {
		records = append(records, models.FileRecord{
			ID:  f.Get("id").String(),
			URL: f.Get("url").String(),
		})
		return true
	})
	return records, nil
}

// Document fetches the metadata of a single document from GET /files/{id}.
func (c *Client) Document(ctx context.Context, id string) (*models.Document, error) {
	body, err := c.get(ctx, nil, "files", url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}

	src := gjson.GetBytes(body, "_source")
	if !src.Exists() {
		src = gjson.ParseBytes(body)
	}
	if !src.IsObject() {
		return nil, fmt.Errorf("get document %s: %w", id, ErrMalformed)
	}

	doc := &models.Document{
		ID:      id,
		Title:   src.Get("name").String(),
		URL:     src.Get("url").String(),
		PDFName: src.Get("pdf_name").String(),
	}
	if ts := src.Get("updated_at").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			doc.UpdatedAt = t
		} else {
			c.log.WithField("id", id).WithField("updated_at", ts).Debug("unparsed document timestamp")
		}
	}
	return doc, nil
}

// Search runs a full-text query through GET /search.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchHit, error) {
	body, err := c.get(ctx, url.Values{"query": {query}}, "search")
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return nil, fmt.Errorf("search: %w: missing results array", ErrMalformed)
	}

	var hits []models.SearchHit
	results.ForEach(func(_, h gjson.Result) bool {
		hit := models.SearchHit{
			ID:           h.Get("_id").String(),
			Title:        h.Get("_source.title").String(),
			Name:         h.Get("_source.name").String(),
			URL:          h.Get("_source.url").String(),
			LastModified: h.Get("_source.last_modified").String(),
		}
		h.Get("highlight.content").ForEach(func(_, frag gjson.Result) bool {
			hit.Highlights = append(hit.Highlights, frag.String())
			return true
		})
		hits = append(hits, hit)
		return true
	})
	return hits, nil
}

// get performs a GET with retries. Network errors, 429 and 5xx are retried;
// any other non-2xx status fails immediately.
func (c *Client) get(ctx context.Context, query url.Values, elems ...string) ([]byte, error) {
	u := c.baseURL.JoinPath(elems...)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	target := u.String()

	var body []byte
	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		b, err := c.do(attemptCtx, target)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	policy.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(policy, c.retries), ctx)

	notify := func(err error, wait time.Duration) {
		c.log.WithFields(logrus.Fields{
			"url":   target,
			"error": err,
			"wait":  wait,
		}).Warn("backend request failed, retrying")
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, target)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	if !gjson.ValidBytes(body) {
		return nil, backoff.Permanent(fmt.Errorf("%w: invalid json from %s", ErrMalformed, target))
	}
	return body, nil
}

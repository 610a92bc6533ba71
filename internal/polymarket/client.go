package polymarket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public Polymarket data-api endpoint.
	DefaultBaseURL = "https://data-api.polymarket.com"

	defaultRequestTimeout = 20 * time.Second
	defaultPageSize       = 500
	defaultMaxPages       = 200
	defaultMaxTries       = 3
)

// ErrUpstream marks any failure to obtain a valid response from the data-api.
// Callers receive it wrapped with request context.
var ErrUpstream = errors.New("polymarket data-api request failed")

// Client fetches wallet data from the Polymarket data-api.
type Client struct {
	client   *http.Client
	logger   *zap.Logger
	baseURL  string
	pageSize int
	maxPages int
	maxTries uint
}

// ClientOptions contains options for creating a new Client.
type ClientOptions struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
	MaxPages int
	MaxTries int
}

// DefaultClientOptions returns the default client settings.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseURL:  DefaultBaseURL,
		Timeout:  defaultRequestTimeout,
		PageSize: defaultPageSize,
		MaxPages: defaultMaxPages,
		MaxTries: defaultMaxTries,
	}
}

// NewClient creates a new data-api client with the given options.
func NewClient(logger *zap.Logger, opts ...ClientOptions) *Client {
	options := DefaultClientOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	if options.Timeout <= 0 {
		options.Timeout = defaultRequestTimeout
	}
	if options.PageSize <= 0 {
		options.PageSize = defaultPageSize
	}
	if options.MaxPages <= 0 {
		options.MaxPages = defaultMaxPages
	}
	if options.MaxTries <= 0 {
		options.MaxTries = defaultMaxTries
	}

	return &Client{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxConnsPerHost:     100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:   logger.Named("polymarket"),
		baseURL:  options.BaseURL,
		pageSize: options.PageSize,
		maxPages: options.MaxPages,
		maxTries: uint(options.MaxTries),
	}
}

// Positions fetches all open positions for a wallet.
func (c *Client) Positions(ctx context.Context, user string) ([]Position, error) {
	params := url.Values{}
	params.Set("user", user)
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("sizeThreshold", "0")

	var positions []Position
	if err := c.getJSON(ctx, "/positions", params, &positions); err != nil {
		return nil, fmt.Errorf("fetch positions for %s: %w", user, err)
	}

	c.logger.Debug("positions fetched",
		zap.String("user", user),
		zap.Int("count", len(positions)))
	return positions, nil
}

// ClosedPositions fetches up to limit resolved positions for a wallet.
func (c *Client) ClosedPositions(ctx context.Context, user string, limit int) ([]ClosedPosition, error) {
	params := url.Values{}
	params.Set("user", user)
	params.Set("limit", strconv.Itoa(limit))

	var closed []ClosedPosition
	if err := c.getJSON(ctx, "/closed-positions", params, &closed); err != nil {
		return nil, fmt.Errorf("fetch closed positions for %s: %w", user, err)
	}

	c.logger.Debug("closed positions fetched",
		zap.String("user", user),
		zap.Int("count", len(closed)))
	return closed, nil
}

// Activity walks the paginated activity log newest-first up to the end cutoff
// and returns the concatenated entries in fetched order. Pagination stops on
// an empty page, a short page, or the page ceiling. Entries older than start
// are filtered out when start is non-zero. Ordering and asset filtering are
// the caller's concern.
func (c *Client) Activity(ctx context.Context, user string, end, start time.Time) ([]ActivityEntry, error) {
	params := url.Values{}
	params.Set("user", user)
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("sortBy", "TIMESTAMP")
	params.Set("sortDirection", "DESC")
	params.Set("end", strconv.FormatInt(end.Unix(), 10))

	var entries []ActivityEntry
	offset := 0
	for page := 0; page < c.maxPages; page++ {
		pageParams := url.Values{}
		for k, v := range params {
			pageParams[k] = v
		}
		pageParams.Set("offset", strconv.Itoa(offset))

		var pageEntries []ActivityEntry
		if err := c.getJSON(ctx, "/activity", pageParams, &pageEntries); err != nil {
			return nil, fmt.Errorf("fetch activity page %d for %s: %w", page, user, err)
		}
		if len(pageEntries) == 0 {
			break
		}

		entries = append(entries, pageEntries...)

		if len(pageEntries) < c.pageSize {
			break
		}
		offset += c.pageSize
	}

	if !start.IsZero() {
		filtered := entries[:0]
		for _, entry := range entries {
			if !entry.OccurredAt().Before(start) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	c.logger.Debug("activity fetched",
		zap.String("user", user),
		zap.Int("count", len(entries)))
	return entries, nil
}

// getJSON performs a GET with retry and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = 500 * time.Millisecond
	backoffPolicy.MaxInterval = 5 * time.Second

	notify := func(err error, duration time.Duration) {
		c.logger.Warn("retrying data-api request",
			zap.String("path", path),
			zap.Duration("backoff", duration),
			zap.Error(err))
	}

	operation := func() ([]byte, error) {
		return c.fetchOnce(ctx, reqURL, path)
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrUpstream, path, err)
	}
	return nil
}

// fetchOnce performs a single request and returns the response body.
func (c *Client) fetchOnce(ctx context.Context, reqURL, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: create request: %v", ErrUpstream, err))
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("data-api request completed",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: unexpected status %d for %s", ErrUpstream, resp.StatusCode, path)
		// Client errors will not heal on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return body, nil
}

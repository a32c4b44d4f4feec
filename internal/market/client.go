// Package market implements the HTTP client for the bulk price catalog
// service.
package market

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/stashworks/appraise/internal/common"
	"github.com/stashworks/appraise/internal/model"
	"github.com/stashworks/appraise/internal/service"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = 500 * time.Millisecond
)

// Client fetches the full item catalog for one server category. It holds no
// cache; persistence is the catalog store's job.
type Client struct {
	httpClient     *http.Client
	now            func() time.Time
	baseURL        string
	serverCategory string
	retry          service.RetryOptions
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetryOptions overrides the retry schedule.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(c *Client) {
		c.retry = opts
	}
}

// NewClient creates a catalog client for the given service and server
// category.
func NewClient(baseURL, serverCategory string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%w: market base URL", common.ErrMissingConfig)
	}
	if strings.TrimSpace(serverCategory) == "" {
		return nil, fmt.Errorf("%w: server category", common.ErrMissingConfig)
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		serverCategory: serverCategory,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retry: service.RetryOptions{
			MaxAttempts:  defaultAttempts,
			InitialDelay: defaultRetryDelay,
			MaxDelay:     defaultRetryDelay,
			Multiplier:   1.0, // fixed backoff between attempts
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch retrieves a fresh catalog. Transport failures and non-2xx statuses
// are retried on a fixed backoff; a 2xx response that does not decode as the
// expected entry array is reported immediately as a bad-payload error.
func (c *Client) Fetch(ctx context.Context) (*model.Catalog, error) {
	endpoint := fmt.Sprintf("%s/api/item/getall/%s", c.baseURL, url.PathEscape(c.serverCategory))

	var catalog *model.Catalog
	err := common.WithRetry(ctx, func() error {
		fetched, attemptErr := c.fetchOnce(ctx, endpoint)
		if attemptErr != nil {
			return attemptErr
		}
		catalog = fetched
		return nil
	}, c.retry)
	if err != nil {
		return nil, err
	}

	slog.Debug("Fetched catalog",
		"entries", len(catalog.Entries),
		"server_category", c.serverCategory)

	return catalog, nil
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) (*model.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &common.RetryableError{
			Retryable: false,
			Err:       &FetchError{Kind: KindTransport, Err: err},
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: classifyTransport(err), Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			Kind:       classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
		}
	}

	var entries []model.CatalogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		// Not a transient condition; retrying the same payload cannot help.
		return nil, &common.RetryableError{
			Retryable: false,
			Err:       &FetchError{Kind: KindBadPayload, StatusCode: resp.StatusCode, Err: err},
		}
	}

	return &model.Catalog{
		FetchedAt: c.now().UTC(),
		Entries:   entries,
	}, nil
}

func classifyStatus(status int) FailureKind {
	switch status {
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindTransport
	}
}

func classifyTransport(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuthErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuthErr) || errors.As(err, &hostnameErr) {
		return KindTLS
	}

	return KindTransport
}

// Package gateway reaches sibling services over HTTP and adapts the local
// ledger to the same interface.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/infrastructure/metrics"
	"github.com/iho/greenledger/internal/usecase"
)

// Paths served by every sibling's internal API.
const (
	PathLedgerQuery = "/internal/v1/ledger/query"
	PathAccounts    = "/internal/v1/accounts"
	PathEvents      = "/internal/v1/events"
)

// DefaultTimeout bounds a single call to a sibling service.
const DefaultTimeout = 3 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4 << 10

// TokenSigner issues internal service tokens for an audience.
type TokenSigner interface {
	Generate(audience string) (string, error)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Name       string
	BaseURL    string
	Timeout    time.Duration
	Signer     TokenSigner
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// Client talks to one sibling service.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
	signer     TokenSigner
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewClient creates a new Client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		name:       cfg.Name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		signer:     cfg.Signer,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.With().Str("component", "gateway").Str("service", cfg.Name).Logger(),
	}
}

// Name returns the sibling service name.
func (c *Client) Name() string {
	return c.name
}

// QueryTier asks the sibling for the customer's tier and seed balance.
func (c *Client) QueryTier(ctx context.Context, token string) (*usecase.TierSnapshot, error) {
	var resp dto.LedgerQueryResponse
	err := c.do(ctx, "query_tier", http.MethodPost, PathLedgerQuery, dto.LedgerQueryRequest{
		AccountOwnerIdentity: token,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.ToTierSnapshot(), nil
}

// QueryAccounts lists the customer's accounts held by the sibling.
func (c *Client) QueryAccounts(ctx context.Context, token string) ([]usecase.AccountSummary, error) {
	var resp dto.AccountSummariesResponse
	path := PathAccounts + "?token=" + url.QueryEscape(token)
	if err := c.do(ctx, "query_accounts", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	for i := range resp.Accounts {
		if resp.Accounts[i].Service == "" {
			resp.Accounts[i].Service = c.name
		}
	}
	return resp.Accounts, nil
}

// DeliverEvent posts an inbound credit event. The sibling deduplicates on
// ExternalRef, so redelivery is safe.
func (c *Client) DeliverEvent(ctx context.Context, event dto.InboundEventRequest) (*dto.IngestResponse, error) {
	var resp dto.IngestResponse
	if err := c.do(ctx, "deliver_event", http.MethodPost, PathEvents, event, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) error {
	start := time.Now()
	status := "ok"
	defer func() {
		if c.metrics != nil {
			c.metrics.GatewayRequests.WithLabelValues(c.name, operation, status).Inc()
			c.metrics.GatewayDuration.WithLabelValues(c.name, operation).Observe(time.Since(start).Seconds())
		}
	}()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		status = "error"
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status = "unavailable"
		c.logger.Warn().Err(err).Str("operation", operation).Msg("sibling service unreachable")
		return fmt.Errorf("%w: %s %s: %w", domain.ErrBackendUnavailable, c.name, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		err := c.statusError(resp)
		if errors.Is(err, domain.ErrBackendUnavailable) {
			status = "unavailable"
		} else {
			status = "rejected"
		}
		c.logger.Debug().
			Err(err).
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Msg("sibling service returned an error")
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		status = "error"
		return fmt.Errorf("%w: %s %s: decode response: %w", domain.ErrBackendUnavailable, c.name, operation, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.signer != nil {
		token, err := c.signer.Generate(c.name)
		if err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// statusError maps a sibling's error response onto domain errors:
// 5xx and 429 are retryable, 404 is a missing account, other 4xx are
// rejections.
func (c *Client) statusError(resp *http.Response) error {
	var body dto.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body)

	detail := body.Message
	if detail == "" {
		detail = body.Error
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s answered %d: %s", domain.ErrBackendUnavailable, c.name, resp.StatusCode, detail)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s: %s", domain.ErrAccountNotFound, c.name, detail)
	default:
		return fmt.Errorf("%w: %s answered %d: %s", domain.ErrRemoteRejected, c.name, resp.StatusCode, detail)
	}
}

package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/fieldpilot/dispatch-api/internal/matching"
	"github.com/fieldpilot/dispatch-api/internal/models"
	"github.com/fieldpilot/dispatch-api/pkg/config"
)

// CallRecorder observes outbound marketplace calls. Implemented by the
// metrics service; a nil recorder disables observation.
type CallRecorder interface {
	RecordMarketplaceCall(endpoint string, status int, elapsed time.Duration)
}

// APIError is returned when the marketplace responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the work-order marketplace on behalf of a provider.
type Client struct {
	baseURL  string
	token    string
	client   *http.Client
	logger   *zap.Logger
	recorder CallRecorder
}

// NewClient constructs a marketplace client with sane defaults.
func NewClient(cfg config.MarketplaceConfig, logger *zap.Logger, recorder CallRecorder) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		recorder: recorder,
	}
}

type listEnvelope struct {
	Data []models.WorkOrder `json:"data"`
}

// ListAvailable returns open work orders visible to the provider.
func (c *Client) ListAvailable(ctx context.Context) ([]models.WorkOrder, error) {
	return c.list(ctx, "/v2/workorders/available")
}

// ListAssigned returns work orders the provider is already committed to.
func (c *Client) ListAssigned(ctx context.Context) ([]models.WorkOrder, error) {
	return c.list(ctx, "/v2/workorders/assigned")
}

func (c *Client) list(ctx context.Context, path string) ([]models.WorkOrder, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode work orders: %w", err)
	}
	return envelope.Data, nil
}

// Request asks for the work order under its posted terms.
func (c *Client) Request(ctx context.Context, workOrderID string) error {
	path := fmt.Sprintf("/v2/workorders/%s/request", url.PathEscape(workOrderID))
	_, err := c.do(ctx, http.MethodPost, path, nil)
	return err
}

// Accept confirms a work order the buyer has routed to the provider.
func (c *Client) Accept(ctx context.Context, workOrderID string) error {
	path := fmt.Sprintf("/v2/workorders/%s/accept", url.PathEscape(workOrderID))
	_, err := c.do(ctx, http.MethodPost, path, nil)
	return err
}

// SendCounterOffer submits alternative terms for the work order.
func (c *Client) SendCounterOffer(ctx context.Context, workOrderID string, offer matching.CounterOffer) error {
	path := fmt.Sprintf("/v2/workorders/%s/counter_offers", url.PathEscape(workOrderID))
	payload, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("encode counter-offer: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, path, payload)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build marketplace request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if c.recorder != nil {
			c.recorder.RecordMarketplaceCall(path, 0, elapsed)
		}
		return nil, fmt.Errorf("call marketplace: %w", err)
	}
	defer resp.Body.Close()

	if c.recorder != nil {
		c.recorder.RecordMarketplaceCall(path, resp.StatusCode, elapsed)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read marketplace response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("marketplace call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

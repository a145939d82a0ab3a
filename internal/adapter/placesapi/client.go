package placesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/couchcryptid/place-picker/internal/observability"
)

// Operation names used in errors, logs and metric labels.
const (
	OpListPlaces        = "list_places"
	OpListUserPlaces    = "list_user_places"
	OpReplaceUserPlaces = "replace_user_places"
)

// Failure messages reported for non-success statuses.
const (
	msgListPlaces        = "Failed to fetch places"
	msgListUserPlaces    = "Failed to fetch user places"
	msgReplaceUserPlaces = "Failed to update user data."
)

// Client talks to the remote places service. Each call is one round trip;
// nothing is retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for the service at baseURL. A zero timeout leaves
// requests bounded only by the caller's context.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// ListCatalogPlaces returns every place in the catalog.
func (c *Client) ListCatalogPlaces(ctx context.Context) ([]domain.Place, error) {
	return c.listPlaces(ctx, OpListPlaces, "/places", msgListPlaces)
}

// ListUserPlaces returns the user's picked places.
func (c *Client) ListUserPlaces(ctx context.Context) ([]domain.Place, error) {
	return c.listPlaces(ctx, OpListUserPlaces, "/user-places", msgListUserPlaces)
}

// ReplaceUserPlaces stores places as the user's complete picked list and
// returns the service's confirmation message.
func (c *Client) ReplaceUserPlaces(ctx context.Context, places []domain.Place) (string, error) {
	if places == nil {
		places = []domain.Place{}
	}
	payload, err := json.Marshal(placesBody{Places: &places})
	if err != nil {
		return "", fmt.Errorf("encode %s request: %w", OpReplaceUserPlaces, err)
	}

	var body envelope
	if err := c.do(ctx, OpReplaceUserPlaces, http.MethodPut, "/user-places", payload, msgReplaceUserPlaces, &body); err != nil {
		return "", err
	}
	if body.Message == nil {
		return "", c.decodeFailure(OpReplaceUserPlaces, errors.New(`missing "message"`))
	}
	c.record(OpReplaceUserPlaces, "success")
	return *body.Message, nil
}

func (c *Client) listPlaces(ctx context.Context, op, path, failMsg string) ([]domain.Place, error) {
	var body envelope
	if err := c.do(ctx, op, http.MethodGet, path, nil, failMsg, &body); err != nil {
		return nil, err
	}
	if body.Places == nil {
		return nil, c.decodeFailure(op, errors.New(`missing "places"`))
	}
	places := *body.Places
	for i, p := range places {
		if err := p.Validate(); err != nil {
			return nil, c.decodeFailure(op, fmt.Errorf("place %d: %w", i, err))
		}
	}
	c.record(op, "success")
	return places, nil
}

// do performs the request and decodes the body into out before looking at the
// status code, so a body that is not JSON is a DecodeError even on failure.
func (c *Client) do(ctx context.Context, op, method, path string, payload []byte, failMsg string, out *envelope) error {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("places api request", "op", op, "method", method, "path", path)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RemoteDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.record(op, "transport_error")
		return fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.decodeFailure(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.record(op, "remote_error")
		c.logger.Warn("places api returned failure status", "op", op, "status", resp.StatusCode)
		return &domain.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: failMsg}
	}
	return nil
}

func (c *Client) decodeFailure(op string, err error) error {
	c.record(op, "decode_error")
	return &domain.DecodeError{Op: op, Err: err}
}

func (c *Client) record(op, outcome string) {
	c.metrics.RemoteRequests.WithLabelValues(op, outcome).Inc()
}

// Wire types. Pointer fields distinguish a missing key from an empty value.

type envelope struct {
	Places  *[]domain.Place `json:"places"`
	Message *string         `json:"message"`
}

type placesBody struct {
	Places *[]domain.Place `json:"places"`
}

// Package gateway is the typed client for the remote platform API.
// The portal owns no business data; every entity it renders or
// mutates goes through this client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"booking-portal/monitoring"
	"booking-portal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Client struct {
	// baseURL is the versioned base path of the platform API.
	baseURL string

	// hc is the http client.
	hc *http.Client

	// breaker fails fast when the platform API is down.
	breaker *utils.CircuitBreaker

	log *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc: &http.Client{
			Timeout: timeout,
		},
		breaker: utils.NewCircuitBreaker("platform-api"),
		log:     log,
	}
}

// APIError is a non-2xx reply from the platform API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform api: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the platform API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// doJSON performs one JSON round trip. token may be empty for public
// endpoints. out may be nil when the reply body is irrelevant.
func (c *Client) doJSON(ctx context.Context, op, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: json.Marshal: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: http.NewReq: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	raw, err := c.roundTrip(ctx, op, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: json.Unmarshal: %w", op, err)
	}
	return nil
}

// doRaw is doJSON without decoding; used for the FPX HTML document.
func (c *Client) doRaw(ctx context.Context, op, method, path, token string, body any) (string, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("%s: json.Marshal: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return "", fmt.Errorf("%s: http.NewReq: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	raw, err := c.roundTrip(ctx, op, req)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (c *Client) roundTrip(ctx context.Context, op string, req *http.Request) ([]byte, error) {
	start := time.Now()

	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s: http.Do: %w", op, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: read body: %w", op, err)
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    apiMessage(raw),
			}
		}
		return raw, nil
	})

	status := "ok"
	if err != nil {
		status = "error"
		c.log.Warn("platform api call failed",
			zap.String("operation", op),
			zap.Error(err),
		)
	}
	monitoring.TrackGatewayRequest(op, status, time.Since(start))

	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// apiMessage pulls the error text out of a platform error reply.
func apiMessage(raw []byte) string {
	var reply struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &reply); err == nil {
		if reply.Error != "" {
			return reply.Error
		}
		if reply.Message != "" {
			return reply.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

package reservation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tentens-tech/lease-dashboard/internal/infrastructure/metrics"
)

const (
	DefaultTimeout     = 30 * time.Second
	AuthTokenHeader    = "X-Auth-Token"
	DefaultUserAgent   = "lease-dashboard"
	maxResponseBodyLen = 5 << 20
)

// Record is a raw resource as returned by the reservation service.
type Record map[string]any

// Client is a connection to the reservation service bound to one endpoint
// and one auth token.
type Client struct {
	URL   string
	Lease *LeaseManager

	token      string
	httpClient *http.Client
}

func NewClient(url, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &Client{
		URL:        strings.TrimRight(url, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
	client.Lease = &LeaseManager{client: client}

	return client
}

// do sends a JSON request and decodes a JSON response into out when out is
// not nil. Non-2xx answers are returned as *APIError.
func (c *Client) do(ctx context.Context, operation, method, path string, in, out any) error {
	start := time.Now()
	status := "error"
	defer func() {
		metrics.ReservationRequests.WithLabelValues(operation, status).Inc()
		metrics.ReservationRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", operation, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", DefaultUserAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(AuthTokenHeader, c.token)
	}

	log.Debugf("Reservation request %s %s", method, req.URL.Path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reservation %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	status = strconv.Itoa(resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyLen))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}

	return nil
}

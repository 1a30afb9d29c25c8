package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/r2w34/fb-ai-sys-sub001/metrics"
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// Client talks to the Facebook Graph API. Every call carries a bounded
// timeout via the shared http.Client.
type Client struct {
	appID       string
	appSecret   string
	redirectURI string
	baseURL     string
	httpClient  *http.Client
	metrics     *metrics.Metrics
}

// GraphError is the error payload the Graph API returns on non-200 responses.
type GraphError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FbtraceID string `json:"fbtrace_id"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("Facebook API error: %s (Type: %s, Code: %d, Trace: %s)",
		e.Message, e.Type, e.Code, e.FbtraceID)
}

type graphErrorEnvelope struct {
	Error *GraphError `json:"error"`
}

func NewClient(appID, appSecret, redirectURI string, m *metrics.Metrics) *Client {
	return &Client{
		appID:       appID,
		appSecret:   appSecret,
		redirectURI: redirectURI,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		metrics:     m,
	}
}

// SetBaseURL points the client at a different Graph endpoint. Used in tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// get performs a GET against the Graph API and decodes the response into out.
// The endpoint label keeps metrics cardinality bounded (no object ids).
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating Graph request: %w", err)
	}
	return c.do(endpoint, req, out)
}

// postForm performs a form-encoded POST against the Graph API.
func (c *Client) postForm(ctx context.Context, endpoint, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("error creating Graph request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(endpoint, req, out)
}

func (c *Client) do(endpoint string, req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, "transport_error", start)
		return fmt.Errorf("error calling Facebook: %w", err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.Status, start)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading Facebook response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope graphErrorEnvelope
		if unmarshalErr := json.Unmarshal(bodyBytes, &envelope); unmarshalErr == nil && envelope.Error != nil {
			return envelope.Error
		}
		return fmt.Errorf("Facebook API error (%s): %s", resp.Status, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("error parsing Facebook response: %w", err)
	}
	return nil
}

func (c *Client) observe(endpoint, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.GraphRequests.WithLabelValues(endpoint, status).Inc()
	c.metrics.GraphLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

package coursera

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://www.coursera.org/api/"
	maxRetries     = 3
	retryDelay     = time.Second
)

// HTTPClient defines the interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client handles communication with the Coursera on-demand API. The
// authenticated session it carries is read-only after construction; all
// concurrent use goes through the underlying transport's connection pool.
type Client struct {
	cauth      string
	userID     string
	baseURL    string
	httpClient HTTPClient
}

// ClientOption allows configuring the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// NewClient creates a new Coursera API client authenticated with the CAUTH
// browser session cookie.
func NewClient(cauth string, opts ...ClientOption) (*Client, error) {
	if cauth == "" {
		cauth = os.Getenv("COURSERA_CAUTH")
	}
	if cauth == "" {
		return nil, fmt.Errorf("no CAUTH session cookie: set it in the config file or the COURSERA_CAUTH environment variable")
	}

	client := &Client{
		cauth:      cauth,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// UserID returns the numeric user id resolved by FetchUserID.
func (c *Client) UserID() string {
	return c.userID
}

// FetchUserID resolves the authenticated user's id. An error here means the
// session cookie is missing or expired and the whole run must abort.
func (c *Client) FetchUserID() (string, error) {
	var out userPermissionsResponse
	params := url.Values{}
	params.Set("q", "my")
	if err := c.GetJSON("adminUserPermissions.v1", params, &out); err != nil {
		return "", err
	}
	if len(out.Elements) == 0 {
		if out.ErrorCode != "" {
			return "", fmt.Errorf("session rejected: %s", out.ErrorCode)
		}
		return "", fmt.Errorf("no user id in permissions response")
	}
	c.userID = out.Elements[0].ID
	return c.userID, nil
}

// GetJSON performs a GET against an API path and decodes the JSON response.
func (c *Client) GetJSON(path string, params url.Values, v interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s failed: %d", path, resp.StatusCode)
	}

	return decodeJSON(resp.Body, v)
}

// PostJSON performs a POST with a JSON body and returns the raw response
// body. Callers that only care about a marker substring read it directly.
func (c *Client) PostJSON(path string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		return string(raw), fmt.Errorf("POST %s failed: %d", path, resp.StatusCode)
	}

	return string(raw), nil
}

// PutJSON performs a PUT with a JSON body, decoding the response into v when
// v is non-nil.
func (c *Client) PutJSON(path string, payload interface{}, v interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("PUT", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("PUT %s failed: %d", path, resp.StatusCode)
	}

	if v == nil {
		return nil
	}
	return decodeJSON(resp.Body, v)
}

// doRequest performs an HTTP request with retry logic
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay * time.Duration(attempt))
		}

		req.Header.Set("Cookie", "CAUTH="+c.cauth)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			retryAfter := resp.Header.Get("Retry-After")
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				time.Sleep(time.Duration(seconds) * time.Second)
			} else {
				time.Sleep(retryDelay * time.Duration(attempt+1))
			}
			lastErr = fmt.Errorf("rate limited: %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// decodeJSON reads and decodes JSON from response body
func decodeJSON(r io.Reader, v interface{}) error {
	return json.NewDecoder(r).Decode(v)
}

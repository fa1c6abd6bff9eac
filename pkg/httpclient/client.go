package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var _ HTTPClient = (*httpClient)(nil)

type HTTPClient interface {
	Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error)
	Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (*http.Response, error)
	PostJSON(ctx context.Context, url string, payload any, headers map[string]string) (*http.Response, error)
	PostForm(ctx context.Context, url string, values url.Values, headers map[string]string) (*http.Response, error)
	Do(req *http.Request) (*http.Response, error)
}

type httpClient struct {
	client *http.Client
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &httpClient{client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	setHeaders(req, headers)
	return c.client.Do(req)
}

func (c *httpClient) Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	setHeaders(req, headers)
	return c.client.Do(req)
}

func (c *httpClient) PostJSON(ctx context.Context, url string, payload any, headers map[string]string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	return c.Post(ctx, url, bytes.NewReader(body), merge(headers, "Content-Type", "application/json"))
}

func (c *httpClient) PostForm(ctx context.Context, url string, values url.Values, headers map[string]string) (*http.Response, error) {
	body := strings.NewReader(values.Encode())
	return c.Post(ctx, url, body, merge(headers, "Content-Type", "application/x-www-form-urlencoded"))
}

func (c *httpClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

func setHeaders(req *http.Request, headers map[string]string) {
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

func merge(headers map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	out[key] = value
	for k, v := range headers {
		out[k] = v
	}
	return out
}

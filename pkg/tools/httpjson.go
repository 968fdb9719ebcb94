package tools

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

	"github.com/tidwall/gjson"
)

const (
	maxResponseBytes = 4 << 20
	// shorter keys are not masked; replacing them would garble ordinary text
	minSecretLen = 4
)

// apiClient is the small JSON-over-HTTP client shared by the remote tool providers.
// Errors name the caller's operation, never the request URL, and mask the configured secrets.
type apiClient struct {
	baseURL string
	http    *http.Client
	header  http.Header
	secrets []string
}

func newAPIClient(baseURL string, client *http.Client, secrets ...string) *apiClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	var keep []string
	for _, s := range secrets {
		if s = strings.TrimSpace(s); len(s) >= minSecretLen {
			keep = append(keep, s)
		}
	}
	return &apiClient{baseURL: strings.TrimRight(baseURL, "/"), http: client, header: http.Header{}, secrets: keep}
}

func (c *apiClient) getJSON(ctx context.Context, op, path string, query url.Values) (gjson.Result, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, c.fail(op, unwrapURLError(err))
	}
	return c.do(op, req)
}

func (c *apiClient) postJSON(ctx context.Context, op, path string, body any) (gjson.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, c.fail(op, unwrapURLError(err))
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req)
}

func (c *apiClient) do(op string, req *http.Request) (gjson.Result, error) {
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, c.fail(op, unwrapURLError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, c.fail(op, fmt.Errorf("read response: %w", unwrapURLError(err)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, c.fail(op, fmt.Errorf("status %d: %s", resp.StatusCode, apiErrorMessage(data)))
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, c.fail(op, errors.New("response is not valid JSON"))
	}
	return gjson.ParseBytes(data), nil
}

// fail labels err with op. When a secret shows up in the text, the cause is replaced by a masked
// copy and no longer unwraps.
func (c *apiClient) fail(op string, err error) error {
	msg := err.Error()
	masked := msg
	for _, s := range c.secrets {
		masked = strings.ReplaceAll(masked, s, "***")
	}
	if masked != msg {
		return fmt.Errorf("%s: %s", op, masked)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// unwrapURLError drops the *url.Error wrapper, whose message embeds the full request URL.
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

// apiErrorMessage picks the most useful message out of a provider error body.
func apiErrorMessage(data []byte) string {
	for _, path := range []string{"message", "error.message", "error", "detail", "error-type"} {
		if v := gjson.GetBytes(data, path); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

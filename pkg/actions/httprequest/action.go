// Package httprequest implements the httpRequest action handler.
package httprequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Action performs an HTTP request described entirely by its config.
type Action struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
	Timeout time.Duration
	Retry   RetryConfig

	client *http.Client
}

// RetryConfig controls re-attempts on transport errors and 5xx responses.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// NewAction builds an HTTP request action from a descriptor config.
func NewAction(config map[string]any) (*Action, error) {
	url, _ := config["url"].(string)
	if url == "" {
		return nil, errors.New("http request action requires a url")
	}

	method, _ := config["method"].(string)
	if method == "" {
		method = http.MethodGet
	}

	body, _ := config["body"].(string)

	headers := make(map[string]string)
	if headersConfig, ok := config["headers"].(map[string]any); ok {
		for k, v := range headersConfig {
			if strVal, ok := v.(string); ok {
				headers[k] = strVal
			}
		}
	}

	retry := RetryConfig{Attempts: 1}
	if retryConfig, ok := config["retry"].(map[string]any); ok {
		if attempts, ok := retryConfig["attempts"].(float64); ok && attempts >= 1 {
			retry.Attempts = int(attempts)
		}

		if delay, ok := retryConfig["delay"].(float64); ok {
			retry.Delay = time.Duration(delay) * time.Millisecond
		}
	}

	timeout := defaultTimeout
	if seconds, ok := config["timeout"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	return &Action{
		Method:  strings.ToUpper(method),
		URL:     url,
		Headers: headers,
		Body:    body,
		Timeout: timeout,
		Retry:   retry,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Execute performs the request, retrying per config. The response is
// decoded as JSON when possible and returned as the raw string otherwise.
func (a *Action) Execute(ctx context.Context, _ map[string]any, logger *slog.Logger) (any, error) {
	var (
		lastErr error
		resp    *http.Response
	)

	for attempt := 1; attempt <= a.Retry.Attempts; attempt++ {
		if attempt > 1 {
			logger.Info("Retrying HTTP request", "attempt", attempt, "max_attempts", a.Retry.Attempts)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.Retry.Delay):
			}
		}

		resp, lastErr = a.doRequest(ctx)
		if lastErr != nil {
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError && attempt < a.Retry.Attempts {
			if err := resp.Body.Close(); err != nil {
				logger.Warn("Failed to close response body", "error", err)
			}

			lastErr = fmt.Errorf("server error (status %d), retrying", resp.StatusCode)
			resp = nil

			continue
		}

		break
	}

	if resp == nil {
		return nil, fmt.Errorf("all attempts failed, last error: %w", lastErr)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var body any
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		body = string(bodyBytes)
	}

	logger.Info("HTTP request completed", "status", resp.StatusCode, "url", a.URL)

	return map[string]any{
		"status_code": resp.StatusCode,
		"body":        body,
		"headers":     flattenHeaders(resp.Header),
	}, nil
}

// doRequest issues one attempt. The client's Timeout bounds the whole
// exchange including the body read, so no per-request context deadline is
// layered on top.
func (a *Action) doRequest(ctx context.Context) (*http.Response, error) {
	var bodyReader io.Reader
	if a.Body != "" {
		bodyReader = strings.NewReader(a.Body)
	}

	req, err := http.NewRequestWithContext(ctx, a.Method, a.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	for key, value := range a.Headers {
		req.Header.Set(key, value)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	return resp, nil
}

func flattenHeaders(h http.Header) map[string]string {
	flat := make(map[string]string, len(h))
	for key := range h {
		flat[key] = h.Get(key)
	}

	return flat
}

// Package webhook implements the outbound webhook action handler: it POSTs
// the triggering event payload to an external URL.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// SignatureHeader carries the hex HMAC-SHA256 of the request body when the
// webhook is configured with a secret.
const SignatureHeader = "X-Automata-Signature"

// Action delivers the event payload to an external endpoint.
type Action struct {
	URL     string
	Method  string
	Headers map[string]string
	Secret  string
	Timeout time.Duration

	client *http.Client
}

// NewAction builds an outbound webhook action from a descriptor config.
func NewAction(config map[string]any) (*Action, error) {
	url, _ := config["url"].(string)
	if url == "" {
		return nil, errors.New("webhook action requires a url")
	}

	method, _ := config["method"].(string)
	if method == "" {
		method = http.MethodPost
	}

	secret, _ := config["secret"].(string)

	headers := make(map[string]string)
	if headersConfig, ok := config["headers"].(map[string]any); ok {
		for k, v := range headersConfig {
			if strVal, ok := v.(string); ok {
				headers[k] = strVal
			}
		}
	}

	return &Action{
		URL:     url,
		Method:  strings.ToUpper(method),
		Headers: headers,
		Secret:  secret,
		Timeout: defaultTimeout,
		client:  &http.Client{},
	}, nil
}

// Execute serializes the event payload as JSON and delivers it. Any non-2xx
// response fails the action.
func (a *Action) Execute(ctx context.Context, eventData map[string]any, logger *slog.Logger) (any, error) {
	payload, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize webhook payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, a.Method, a.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range a.Headers {
		req.Header.Set(key, value)
	}

	if a.Secret != "" {
		req.Header.Set(SignatureHeader, sign(a.Secret, payload))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	logger.Info("Webhook delivered", "url", a.URL, "status", resp.StatusCode)

	return map[string]any{
		"status_code": resp.StatusCode,
		"response":    string(body),
	}, nil
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)

	return hex.EncodeToString(mac.Sum(nil))
}

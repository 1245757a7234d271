// Package llm calls the remote inference API and normalizes its replies.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultURL     = "https://mlvoca.com/api/generate"
	DefaultTimeout = 60 * time.Second

	maxResponseBytes = 4 << 20
)

// Client issues single, non-streaming generation requests. It never retries.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a Client for url. A non-positive timeout falls back to
// DefaultTimeout.
func NewClient(url string, timeout time.Duration) *Client {
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        strings.TrimSpace(url),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Generate sends prompt to modelID and returns the generated text. The call
// is aborted when the client timeout elapses or ctx is done. Every failure
// is an *Error.
func (c *Client) Generate(ctx context.Context, prompt, modelID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(generateRequest{Model: modelID, Prompt: prompt, Stream: false})
	if err != nil {
		return "", &Error{Kind: KindNetwork, Message: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, "send request", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return "", classifyTransportError(ctx, "read response", err)
	}

	return parseResponse(res.StatusCode, body)
}

// parseResponse applies, in order: a JSON string "response" field wins; a
// JSON "error" field is a remote failure; a non-JSON non-empty body is
// returned verbatim; an empty body is KindEmptyResponse.
func parseResponse(status int, body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", &Error{Kind: KindEmptyResponse, Message: "upstream returned an empty body", StatusCode: status}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		if status < 200 || status >= 300 {
			return "", &Error{Kind: KindStatus, Message: snippet(trimmed), StatusCode: status}
		}
		return string(body), nil
	}

	if raw, ok := obj["response"]; ok {
		var text *string
		if err := json.Unmarshal(raw, &text); err == nil && text != nil {
			return *text, nil
		}
	}
	if raw, ok := obj["error"]; ok && !isNull(raw) {
		return "", &Error{Kind: KindRemote, Message: errorMessage(raw), StatusCode: status}
	}
	return "", &Error{Kind: KindMalformed, Message: "no response field in upstream payload", StatusCode: status}
}

func classifyTransportError(ctx context.Context, op string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: op + ": deadline exceeded", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, Message: op + ": request canceled", Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Message: op + ": " + err.Error(), Err: err}
	default:
		return &Error{Kind: KindNetwork, Message: op + ": " + err.Error(), Err: err}
	}
}

// errorMessage flattens the upstream "error" value: a string, an object
// with a "message" field, or the raw JSON otherwise.
func errorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func snippet(body []byte) string {
	const limit = 256
	if len(body) <= limit {
		return string(body)
	}
	return fmt.Sprintf("%s... (%d bytes)", body[:limit], len(body))
}

// Package rpc talks to a coin-set full node (or a coinset.org compatible
// endpoint) over its JSON HTTP API.
package rpc

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

	"bridge-core/pkg/coinset"
	"bridge-core/pkg/errno"
)

// Client is a full node RPC client.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PushTxResponse is the node's answer to push_tx.
type PushTxResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SubmissionError reports a rejected or failed submission. Bundle holds the
// indented JSON of the spend bundle so it can be resubmitted by hand.
type SubmissionError struct {
	HTTPStatus int
	Reason     string
	Bundle     []byte
}

func (e *SubmissionError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("push_tx failed (http %d): %s", e.HTTPStatus, e.Reason)
	}
	return "push_tx failed: " + e.Reason
}

func (e *SubmissionError) Unwrap() error { return errno.ErrSubmission }

// Retryable reports whether the push may succeed later: transport failures
// and 5xx answers. Anything else the node answered is a final rejection.
func (e *SubmissionError) Retryable() bool {
	return e.HTTPStatus == 0 || e.HTTPStatus >= 500
}

// Retryable reports whether err from PushTx is worth retrying. Errors that are
// not a *SubmissionError never reached the node and are retryable.
func Retryable(err error) bool {
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr.Retryable()
	}
	return true
}

// BundleJSON renders sb in the node's JSON shape.
func BundleJSON(sb *coinset.SpendBundle) ([]byte, error) {
	return json.MarshalIndent(sb, "", "  ")
}

// PushTx submits sb. Any non-success outcome is a *SubmissionError.
func (c *Client) PushTx(ctx context.Context, sb *coinset.SpendBundle) (*PushTxResponse, error) {
	recovery, err := BundleJSON(sb)
	if err != nil {
		return nil, fmt.Errorf("encode spend bundle: %w", err)
	}
	body, err := json.Marshal(map[string]*coinset.SpendBundle{"spend_bundle": sb})
	if err != nil {
		return nil, fmt.Errorf("encode spend bundle: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/push_tx", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SubmissionError{Reason: err.Error(), Bundle: recovery}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &SubmissionError{HTTPStatus: resp.StatusCode, Reason: err.Error(), Bundle: recovery}
	}
	var out PushTxResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &SubmissionError{HTTPStatus: resp.StatusCode, Reason: strings.TrimSpace(string(raw)), Bundle: recovery}
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		reason := out.Error
		if reason == "" {
			reason = out.Status
		}
		return &out, &SubmissionError{HTTPStatus: resp.StatusCode, Reason: reason, Bundle: recovery}
	}
	return &out, nil
}

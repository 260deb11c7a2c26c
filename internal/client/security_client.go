// Package client holds HTTP clients for sibling onboarding services.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mangoesafterplay/customer-onboarding/internal/config"
)

// TokenValidation is the token authority's answer to a validate call.
type TokenValidation struct {
	Success bool   `json:"success"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// TokenConsumption is the token authority's answer to a mark-used call.
type TokenConsumption struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UnreachableError wraps transport-level failures so callers can distinguish
// "the authority said no" from "the authority could not be reached".
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("token authority unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// SecurityClient talks to the token authority over HTTP. Every call carries
// the configured timeout; there are no automatic retries.
type SecurityClient struct {
	baseURL string
	http    *http.Client
}

// NewSecurityClient builds the client from config.
func NewSecurityClient(cfg config.SecurityClientConfig) *SecurityClient {
	return &SecurityClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// ValidateToken asks the authority whether the token is currently valid.
// A rejection is reported in the result, not as an error.
func (c *SecurityClient) ValidateToken(ctx context.Context, token string) (*TokenValidation, error) {
	var result TokenValidation
	if err := c.post(ctx, "/tokens/validate", token, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkTokenUsed asks the authority to consume the token.
func (c *SecurityClient) MarkTokenUsed(ctx context.Context, token string) (*TokenConsumption, error) {
	var result TokenConsumption
	if err := c.post(ctx, "/tokens/mark-used", token, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *SecurityClient) post(ctx context.Context, path, token string, out any) error {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UnreachableError{Err: err}
	}
	defer resp.Body.Close()

	// Rejections come back as 4xx with the same envelope; decode regardless
	// of status and let the caller inspect the flags.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UnreachableError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Timeout exposes the configured call deadline, mainly for logging.
func (c *SecurityClient) Timeout() time.Duration {
	return c.http.Timeout
}

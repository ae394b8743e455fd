// Package client talks to the gophauth HTTP API.
//
// Non-2xx responses are returned as *APIError values that match one of the
// sentinel errors (ErrUnauthorized, ErrRejected, ErrServer) with errors.Is.
// Transport failures match ErrUnavailable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Client is the API contract used by the CLI.
type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
	AddRole(ctx context.Context, req models.AddRoleRequest) error
	Me(ctx context.Context, token string) (*models.Identity, error)
}

type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	res := &models.AuthResult{}
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	res := &models.AuthResult{}
	if err := c.do(ctx, http.MethodPost, "/auth/token", "", req, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *HTTPClient) AddRole(ctx context.Context, req models.AddRoleRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/addrole", "", req, nil)
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*models.Identity, error) {
	res := &models.Identity{}
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return decodeError(resp.StatusCode, raw)
}

// decodeError turns an error body into an APIError. The body is either a
// JSON string message or a validation problem.
func decodeError(status int, raw []byte) error {
	kind := ErrRejected
	switch {
	case status == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case status >= http.StatusInternalServerError:
		kind = ErrServer
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return &APIError{Kind: kind, Status: status, Message: msg}
	}

	var p models.Problem
	if err := json.Unmarshal(raw, &p); err == nil && p.Title != "" {
		return problemError(status, &p)
	}

	return &APIError{Kind: kind, Status: status, Message: strings.TrimSpace(string(raw))}
}

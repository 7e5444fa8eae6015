// Package client talks to the dashboard REST API and keeps a cached item list
// in sync with it.
package client

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
	"sync"
	"time"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// Config configures the REST client.
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Client is a typed wrapper over the dashboard REST endpoints.
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

// New builds a client for the server at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("client: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpClient,
		token:   cfg.Token,
	}, nil
}

// SetToken replaces the bearer credential attached to requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer credential.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ListItems fetches every item visible to the caller.
func (c *Client) ListItems(ctx context.Context) ([]dashboard.Item, error) {
	var items []dashboard.Item
	if err := c.do(ctx, http.MethodGet, "/api/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem stores a new item and returns its id.
func (c *Client) CreateItem(ctx context.Context, input dashboard.ItemInput) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/items", input, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// UpdateItem sends a partial update.
func (c *Client) UpdateItem(ctx context.Context, id string, patch dashboard.ItemPatch) error {
	return c.do(ctx, http.MethodPut, "/api/items/"+url.PathEscape(id), patch, nil)
}

// DeleteItem removes one item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id), nil, nil)
}

// Export downloads every item.
func (c *Client) Export(ctx context.Context) (dashboard.ExportDocument, error) {
	var doc dashboard.ExportDocument
	err := c.do(ctx, http.MethodGet, "/api/items/export", nil, &doc)
	return doc, err
}

// Import uploads items, optionally replacing the existing ones.
func (c *Client) Import(ctx context.Context, req dashboard.ImportRequest) (dashboard.ImportResult, error) {
	var result dashboard.ImportResult
	err := c.do(ctx, http.MethodPost, "/api/items/import", req, &result)
	return result, err
}

// CategoryOrder fetches the server-side category ranks.
func (c *Client) CategoryOrder(ctx context.Context) (dashboard.CategoryOrder, error) {
	order := dashboard.CategoryOrder{}
	err := c.do(ctx, http.MethodGet, "/api/category-order", nil, &order)
	return order, err
}

// SaveCategoryOrder upserts server-side ranks.
func (c *Client) SaveCategoryOrder(ctx context.Context, order dashboard.CategoryOrder) error {
	return c.do(ctx, http.MethodPut, "/api/category-order", order, nil)
}

// DeleteCategoryOrder removes one server-side rank.
func (c *Client) DeleteCategoryOrder(ctx context.Context, category string) error {
	return c.do(ctx, http.MethodDelete, "/api/category-order/"+url.PathEscape(category), nil, nil)
}

// Login exchanges credentials for a token. The token is not stored; see
// Session.
func (c *Client) Login(ctx context.Context, username, password string) (dashboard.LoginResult, error) {
	var result dashboard.LoginResult
	payload := map[string]string{"username": username, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/login", payload, &result)
	return result, err
}

// AuthStatus is the body of GET /api/auth/status.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Role          string `json:"role,omitempty"`
}

// AuthStatus verifies the current token.
func (c *Client) AuthStatus(ctx context.Context) (AuthStatus, error) {
	var status AuthStatus
	err := c.do(ctx, http.MethodGet, "/api/auth/status", nil, &status)
	return status, err
}

// LinkStatus fetches reachability for every visible item.
func (c *Client) LinkStatus(ctx context.Context) ([]dashboard.LinkStatus, error) {
	var statuses []dashboard.LinkStatus
	err := c.do(ctx, http.MethodGet, "/api/items/status", nil, &statuses)
	return statuses, err
}

func (c *Client) do(ctx context.Context, method, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("client: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %v", errTransport, method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeRemoteError(resp)
	}
	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func decodeRemoteError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &RemoteError{Status: resp.StatusCode, Message: msg}
}

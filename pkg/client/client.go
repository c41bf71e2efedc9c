// Package client is a Go client for the noticeboard HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// APIError is returned when the service answers with a non-success envelope.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("noticeboard API: %s (code %d, status %d)", e.Message, e.Code, e.StatusCode)
}

// successCode is the envelope code of a successful call.
const successCode = 100000

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client calls the /api procedures of one noticeboard deployment.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New returns a client for baseURL, e.g. "https://notices.example.com/api".
func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, logger: logger}
}

// SetToken authenticates every following request with a session token.
func (c *Client) SetToken(token string) *Client {
	c.http.SetAuthToken(token)
	return c
}

// SignIn exchanges credentials for a session token and keeps it on the client.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	err := c.call(ctx, c.http.R().SetBody(map[string]string{"email": email, "password": password}), resty.MethodPost, "/auth/signin", &result)
	if err != nil {
		return "", err
	}
	c.SetToken(result.Token)
	return result.Token, nil
}

// ListNotices fetches one page of notice.list.
func (c *Client) ListNotices(ctx context.Context, buildingComplexID uint, limit int, cursor *uint) (*Page[Notice], error) {
	return c.noticePage(ctx, "/notices", buildingComplexID, limit, cursor)
}

// ListArchivedNotices fetches one page of notice.archived.
func (c *Client) ListArchivedNotices(ctx context.Context, buildingComplexID uint, limit int, cursor *uint) (*Page[Notice], error) {
	return c.noticePage(ctx, "/notices/archived", buildingComplexID, limit, cursor)
}

// InfiniteListNotices fetches one page of the public feed of a building complex.
func (c *Client) InfiniteListNotices(ctx context.Context, buildingComplexID uint, limit int, cursor *uint) (*Page[Notice], error) {
	return c.noticePage(ctx, "/notices/infinite", buildingComplexID, limit, cursor)
}

func (c *Client) noticePage(ctx context.Context, path string, buildingComplexID uint, limit int, cursor *uint) (*Page[Notice], error) {
	req := c.http.R()
	if buildingComplexID != 0 {
		req.SetQueryParam("buildingComplexId", strconv.FormatUint(uint64(buildingComplexID), 10))
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	if cursor != nil {
		req.SetQueryParam("cursor", strconv.FormatUint(uint64(*cursor), 10))
	}

	var page Page[Notice]
	if err := c.call(ctx, req, resty.MethodGet, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateStatus moves a notice to draft, published or archived.
func (c *Client) UpdateStatus(ctx context.Context, noticeID uint, status NoticeStatus) (*Notice, error) {
	var notice Notice
	path := "/notices/" + strconv.FormatUint(uint64(noticeID), 10) + "/status"
	if err := c.call(ctx, c.http.R().SetBody(map[string]string{"status": string(status)}), resty.MethodPatch, path, &notice); err != nil {
		return nil, err
	}
	return &notice, nil
}

// DeleteNotice removes a notice and its file.
func (c *Client) DeleteNotice(ctx context.Context, noticeID uint) error {
	return c.call(ctx, c.http.R(), resty.MethodDelete, "/notices/"+strconv.FormatUint(uint64(noticeID), 10), nil)
}

// call executes req and decodes the envelope's data into out when out is non-nil.
func (c *Client) call(ctx context.Context, req *resty.Request, method, path string, out interface{}) error {
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return &APIError{StatusCode: resp.StatusCode(), Message: fmt.Sprintf("unexpected response body: %v", err)}
	}
	if resp.IsError() || env.Code != successCode {
		c.logger.Debug("noticeboard API error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
			zap.Int("code", env.Code))
		return &APIError{StatusCode: resp.StatusCode(), Code: env.Code, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

package wechat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.weixin.qq.com"

var ErrAuthFailed = errors.New("wechat authorization failed")

// Session is the result of exchanging a mini-program login code.
type Session struct {
	OpenID     string `json:"openid"`
	UnionID    string `json:"unionid"`
	SessionKey string `json:"session_key"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// Authenticator exchanges a login code for a WeChat identity.
type Authenticator interface {
	Code2Session(ctx context.Context, code string) (*Session, error)
}

type Client struct {
	appID     string
	appSecret string
	baseURL   string
	http      *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(appID, appSecret string, opts ...Option) *Client {
	c := &Client{
		appID:     appID,
		appSecret: appSecret,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Code2Session calls sns/jscode2session.
func (c *Client) Code2Session(ctx context.Context, code string) (*Session, error) {
	q := url.Values{}
	q.Set("appid", c.appID)
	q.Set("secret", c.appSecret)
	q.Set("js_code", code)
	q.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sns/jscode2session?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jscode2session request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jscode2session: unexpected status %d", resp.StatusCode)
	}

	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("jscode2session decode: %w", err)
	}
	if s.ErrCode != 0 || s.OpenID == "" {
		return nil, fmt.Errorf("%w: errcode=%d errmsg=%s", ErrAuthFailed, s.ErrCode, s.ErrMsg)
	}
	return &s, nil
}

// MockClient derives a stable identity from the code, for local development.
type MockClient struct{}

func (MockClient) Code2Session(_ context.Context, code string) (*Session, error) {
	if code == "" {
		return nil, ErrAuthFailed
	}
	sum := sha256.Sum256([]byte(code))
	h := hex.EncodeToString(sum[:])
	return &Session{
		OpenID:     "wx_" + h[:16],
		UnionID:    "union_" + h[16:32],
		SessionKey: h[32:],
	}, nil
}

package healer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/domain/entity"
)

var (
	_ output.HealerPort    = (*Client)(nil)
	_ output.KnowledgePort = (*Client)(nil)
	_ output.ReportSink    = (*Client)(nil)
)

const (
	loginPath    = "/auth/login/"
	healPath     = "/heal/"
	snapshotPath = "/ui-knowledge/sync/"
	resultPath   = "/test-analytics/test-result/"
)

type Config struct {
	BaseURL      string
	Email        string
	Password     string
	ClientSecret string
	HTTPTimeout  time.Duration
	Logger       output.LoggerPort
}

// Client talks to the healing backend: login, heal, knowledge sync and
// result reporting share one authenticated HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
	tokens     *TokenStore
	logger     output.LoggerPort
}

func NewClient(cfg Config) *Client {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		cfg:        cfg,
		logger:     cfg.Logger,
	}
	c.tokens = NewTokenStore(c.login)
	return c
}

type loginRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	ClientSecret string `json:"client_secret"`
}

type loginResponse struct {
	Tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"tokens"`
}

func (c *Client) login(ctx context.Context) (string, error) {
	body, status, err := c.post(ctx, loginPath, "", loginRequest{
		Email:        c.cfg.Email,
		Password:     c.cfg.Password,
		ClientSecret: c.cfg.ClientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	if status < 200 || status >= 300 {
		return "", &entity.AuthenticationError{Detail: fmt.Sprintf("login returned status %d: %s", status, string(body))}
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &entity.AuthenticationError{Detail: fmt.Sprintf("invalid login response: %v", err)}
	}
	if resp.Tokens.Access == "" {
		return "", &entity.AuthenticationError{Detail: "no access token in login response"}
	}
	return resp.Tokens.Access, nil
}

func (c *Client) Heal(ctx context.Context, req *entity.HealRequest) (*entity.HealResponse, error) {
	body, err := c.postAuthed(ctx, healPath, req)
	if err != nil {
		return nil, err
	}

	var resp entity.HealResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid heal response: %w", err)
	}
	return &resp, nil
}

func (c *Client) PushSnapshot(ctx context.Context, snapshot *entity.UISnapshot) error {
	_, err := c.postAuthed(ctx, snapshotPath, snapshot)
	return err
}

func (c *Client) Report(ctx context.Context, result *entity.TestResultReport) error {
	_, err := c.postAuthed(ctx, resultPath, result)
	return err
}

// postAuthed sends an authenticated POST; on an authorization rejection it
// clears the cached token, re-authenticates and retries exactly once.
func (c *Client) postAuthed(ctx context.Context, path string, payload any) ([]byte, error) {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}

	body, status, err := c.post(ctx, path, token, payload)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		if c.logger != nil {
			c.logger.Warn("Token rejected, re-authenticating", "path", path, "status", status)
		}
		c.tokens.Clear()

		token, err = c.tokens.Get(ctx)
		if err != nil {
			return nil, err
		}
		body, status, err = c.post(ctx, path, token, payload)
		if err != nil {
			return nil, err
		}
	}

	if status < 200 || status >= 300 {
		return nil, &entity.StatusError{StatusCode: status, Body: string(body)}
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, path, token string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.logger != nil {
		c.logger.Debug("POST", "path", path, "bytes", len(data))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("Response", "path", path, "status", resp.StatusCode)
	}
	return body, resp.StatusCode, nil
}

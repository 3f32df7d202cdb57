// Package telstra implements the provider client against the Telstra
// Messaging v3 API.
package telstra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ozmsg/gateway/internal/provider"
)

// Config holds the credentials and endpoints for the Telstra API.
type Config struct {
	BaseURL      string
	AuthURL      string // defaults to BaseURL-derived token endpoint when empty
	ClientID     string
	ClientSecret string
	DefaultFrom  string // sender used when a SendRequest has no From
}

// Client talks to the Telstra Messaging v3 API. Safe for concurrent use;
// the OAuth token is cached and refreshed under a mutex.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New creates a Telstra client. A nil httpClient gets a 15s-timeout default.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = strings.TrimSuffix(cfg.BaseURL, "/messaging/v3") + "/v2/oauth/token"
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.With("provider", "telstra"),
	}
}

func (c *Client) Name() string { return "telstra" }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// Authenticate fetches a fresh OAuth token via the client-credentials grant.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("scope", "free-trial-numbers:read messages:read messages:write")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth failed: status %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("auth response missing access token")
	}

	expiresIn := 3600
	if secs, convErr := strconv.Atoi(tok.ExpiresIn); convErr == nil && secs > 0 {
		expiresIn = secs
	}

	c.mu.Lock()
	c.accessToken = tok.AccessToken
	// Refresh a minute early to avoid using a token at the edge of expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn-60) * time.Second)
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "Obtained provider access token", "expires_in_seconds", expiresIn)
	return nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	valid := c.accessToken != "" && time.Now().Before(c.tokenExpiry)
	tok := c.accessToken
	c.mu.Unlock()

	if valid {
		return tok, nil
	}
	if err := c.Authenticate(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	tok = c.accessToken
	c.mu.Unlock()
	return tok, nil
}

type sendRequestBody struct {
	To           interface{} `json:"to"` // string for one recipient, array for several
	From         string      `json:"from"`
	MessageContent string    `json:"messageContent"`
	ScheduleSend *string     `json:"scheduleSend,omitempty"`
}

type sendResponseBody struct {
	MessageID interface{} `json:"messageId"` // string, or array for multi-recipient sends
	Status    string      `json:"status"`
}

// Send submits an outbound message.
func (c *Client) Send(ctx context.Context, req provider.SendRequest) (*provider.SendResult, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("provider auth: %w", err)
	}

	from := req.From
	if from == "" {
		from = c.cfg.DefaultFrom
	}

	body := sendRequestBody{
		From:           from,
		MessageContent: req.Content,
	}
	if len(req.To) == 1 {
		body.To = req.To[0]
	} else {
		body.To = req.To
	}
	if req.ScheduleSend != nil {
		s := req.ScheduleSend.UTC().Format(time.RFC3339)
		body.ScheduleSend = &s
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal send request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read send response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &provider.RateLimitError{RetryAfter: retryAfter(resp)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider send failed: status %d: %s", resp.StatusCode, string(respBody))
	}

	var sent sendResponseBody
	if err := json.Unmarshal(respBody, &sent); err != nil {
		c.logger.WarnContext(ctx, "Send succeeded but response body could not be parsed", "error", err)
		return &provider.SendResult{Status: "queued"}, nil
	}

	return &provider.SendResult{MessageID: firstMessageID(sent.MessageID), Status: sent.Status}, nil
}

type listMessagesResponse struct {
	Messages []providerMessage `json:"messages"`
}

type providerMessage struct {
	MessageID         string `json:"messageId"`
	From              string `json:"from"`
	To                string `json:"to"`
	MessageContent    string `json:"messageContent"`
	MultimediaContent []any  `json:"multimedia,omitempty"`
	ReceivedTimestamp string `json:"receivedTimestamp"`
	CreateTimestamp   string `json:"createTimestamp"`
}

// GetMessages fetches one page of the carrier message listing. The carrier
// caps the effective limit at a small page size server-side; callers should
// page rather than request large limits.
func (c *Client) GetMessages(ctx context.Context, req provider.FetchRequest) ([]provider.Message, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("provider auth: %w", err)
	}

	q := url.Values{}
	q.Set("direction", string(req.Direction))
	q.Set("limit", strconv.Itoa(req.Limit))
	q.Set("offset", strconv.Itoa(req.Offset))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/messages?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read list response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &provider.RateLimitError{RetryAfter: retryAfter(resp)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider list failed: status %d: %s", resp.StatusCode, string(respBody))
	}

	var list listMessagesResponse
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}

	out := make([]provider.Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		msgType := "sms"
		if len(m.MultimediaContent) > 0 {
			msgType = "mms"
		}
		out = append(out, provider.Message{
			ID:         m.MessageID,
			From:       m.From,
			To:         m.To,
			Content:    m.MessageContent,
			Type:       msgType,
			ReceivedAt: parseTimestamp(m.ReceivedTimestamp, m.CreateTimestamp),
		})
	}
	return out, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func parseTimestamp(values ...string) time.Time {
	for _, v := range values {
		if v == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstMessageID(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				return s
			}
			if m, ok := item.(map[string]interface{}); ok {
				if s, ok := m["messageId"].(string); ok {
					return s
				}
			}
		}
	}
	return ""
}

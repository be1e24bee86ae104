// Package whatsapp sends template messages through Azure Communication Services.
package whatsapp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cabbook/internal/service"
)

const (
	apiVersion    = "2024-02-01"
	sendPath      = "/messages/notifications:send"
	defaultPrefix = "+91"
)

// ErrInvalidConnectionString is returned when the connection string lacks an
// endpoint or access key.
var ErrInvalidConnectionString = errors.New("invalid communication services connection string")

// Client is an Azure Communication Services advanced messaging client.
type Client struct {
	endpoint  *url.URL
	accessKey []byte
	channelID string
	client    *http.Client
	now       func() time.Time
}

// NewClient parses a connection string of the form
// "endpoint=https://...;accesskey=...".
func NewClient(connectionString, channelID string) (*Client, error) {
	var endpoint, key string
	for _, part := range strings.Split(connectionString, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.ToLower(k) {
		case "endpoint":
			endpoint = v
		case "accesskey":
			key = v
		}
	}
	if endpoint == "" || key == "" {
		return nil, ErrInvalidConnectionString
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, ErrInvalidConnectionString
	}
	secret, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, ErrInvalidConnectionString
	}

	return &Client{
		endpoint:  u,
		accessKey: secret,
		channelID: channelID,
		client:    &http.Client{Timeout: 10 * time.Second},
		now:       time.Now,
	}, nil
}

type templateValue struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Text string `json:"text"`
}

type bindingRef struct {
	SubType  string `json:"subType,omitempty"`
	RefValue string `json:"refValue"`
}

type templateBindings struct {
	Kind    string       `json:"kind"`
	Body    []bindingRef `json:"body"`
	Buttons []bindingRef `json:"buttons,omitempty"`
}

type messageTemplate struct {
	Name     string           `json:"name"`
	Language string           `json:"language"`
	Bindings templateBindings `json:"bindings"`
	Values   []templateValue  `json:"values"`
}

type notificationRequest struct {
	ChannelRegistrationID string          `json:"channelRegistrationId"`
	To                    []string        `json:"to"`
	Kind                  string          `json:"kind"`
	Template              messageTemplate `json:"template"`
}

// SendTemplate sends msg. The first value fills the body parameter and is
// repeated as the URL button parameter.
func (c *Client) SendTemplate(ctx context.Context, msg service.TemplateMessage) error {
	body, err := json.Marshal(c.buildRequest(msg))
	if err != nil {
		return fmt.Errorf("encode whatsapp request: %w", err)
	}

	target := c.endpoint.ResolveReference(&url.URL{Path: sendPath, RawQuery: "api-version=" + apiVersion})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.sign(req, body)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("whatsapp send failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

func (c *Client) buildRequest(msg service.TemplateMessage) notificationRequest {
	var code string
	if len(msg.Values) > 0 {
		code = msg.Values[0]
	}

	return notificationRequest{
		ChannelRegistrationID: c.channelID,
		To:                    []string{normalizeNumber(msg.To)},
		Kind:                  "template",
		Template: messageTemplate{
			Name:     msg.TemplateName,
			Language: msg.Language,
			Bindings: templateBindings{
				Kind:    "whatsApp",
				Body:    []bindingRef{{RefValue: "otp"}},
				Buttons: []bindingRef{{SubType: "url", RefValue: "button"}},
			},
			Values: []templateValue{
				{Kind: "text", Name: "otp", Text: code},
				{Kind: "quickAction", Name: "button", Text: code},
			},
		},
	}
}

// sign applies HMAC-SHA256 request authentication.
func (c *Client) sign(req *http.Request, body []byte) {
	sum := sha256.Sum256(body)
	contentHash := base64.StdEncoding.EncodeToString(sum[:])
	date := c.now().UTC().Format(http.TimeFormat)

	stringToSign := req.Method + "\n" + req.URL.RequestURI() + "\n" + date + ";" + req.URL.Host + ";" + contentHash
	mac := hmac.New(sha256.New, c.accessKey)
	mac.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("x-ms-date", date)
	req.Header.Set("x-ms-content-sha256", contentHash)
	req.Header.Set("Authorization", "HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature="+signature)
}

func normalizeNumber(mobile string) string {
	mobile = strings.TrimSpace(mobile)
	if strings.HasPrefix(mobile, "+") {
		return mobile
	}
	return defaultPrefix + mobile
}

var _ service.MessageSender = (*Client)(nil)

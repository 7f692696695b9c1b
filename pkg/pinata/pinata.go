// Package pinata pins label metadata to IPFS through the Pinata REST API.
package pinata

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
)

const (
	DefaultAPIURL  = "https://api.pinata.cloud"
	pinJSONPath    = "/pinning/pinJSONToIPFS"
	maxErrorBody   = 4 << 10
	defaultTimeout = 30 * time.Second
)

type Config struct {
	JWT        string        `envconfig:"JWT"`
	APIURL     string        `envconfig:"API_URL" default:"https://api.pinata.cloud"`
	GatewayURL string        `envconfig:"GATEWAY_URL"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"30s"`
}

// APIError is a non-2xx reply from Pinata.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pinata: status %d: %s", e.Status, e.Body)
}

type Client struct {
	jwt     string
	baseURL string
	gateway string
	http    *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.JWT == "" {
		return nil, errors.New("pinata: JWT required")
	}
	base := strings.TrimRight(cfg.APIURL, "/")
	if base == "" {
		base = DefaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		jwt:     cfg.JWT,
		baseURL: base,
		gateway: strings.TrimRight(cfg.GatewayURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type pinRequest struct {
	Content  labelContent `json:"pinataContent"`
	Metadata pinMetadata  `json:"pinataMetadata"`
}

type labelContent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type pinMetadata struct {
	Name string `json:"name"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// UploadJSON pins {name, description} and returns the content id.
func (c *Client) UploadJSON(ctx context.Context, name, description string) (string, error) {
	body, err := json.Marshal(pinRequest{
		Content:  labelContent{Name: name, Description: description},
		Metadata: pinMetadata{Name: name},
	})
	if err != nil {
		return "", fmt.Errorf("pinata: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pinJSONPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("pinata: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.jwt)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinata: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var out pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("pinata: decode response: %w", err)
	}
	if out.IpfsHash == "" {
		return "", errors.New("pinata: response without IpfsHash")
	}
	return out.IpfsHash, nil
}

// GatewayURL returns an HTTP link to cid on the configured gateway, or ""
// when none is configured.
func (c *Client) GatewayURL(cid string) string {
	if c.gateway == "" || cid == "" {
		return ""
	}
	gw := c.gateway
	if !strings.Contains(gw, "://") {
		gw = "https://" + gw
	}
	return gw + "/ipfs/" + cid
}

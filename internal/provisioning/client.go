// Package provisioning registers store subdomains with the hosting provider.
package provisioning

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
	"time"
)

// ErrNotConfigured is returned when no API token or project is set.
var ErrNotConfigured = errors.New("provisioning: hosting API is not configured")

// APIError is a non-2xx answer from the hosting API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("hosting API returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("hosting API returned %d (%s): %s", e.Status, e.Code, e.Message)
}

// Config holds the hosting API credentials and the domain subdomains hang off.
type Config struct {
	BaseURL    string
	Token      string
	ProjectID  string
	RootDomain string
	Timeout    time.Duration
}

// Client adds domains to the hosting project over HTTP.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a Client. A zero Timeout falls back to 10 seconds.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type addDomainRequest struct {
	Name string `json:"name"`
}

type addDomainResponse struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Provision adds {subdomain}.{root domain} to the project and returns the
// fully qualified name the provider registered.
func (c *Client) Provision(ctx context.Context, subdomain string) (string, error) {
	if c.cfg.Token == "" || c.cfg.ProjectID == "" {
		return "", ErrNotConfigured
	}

	fqdn := subdomain + "." + c.cfg.RootDomain
	body, err := json.Marshal(addDomainRequest{Name: fqdn})
	if err != nil {
		return "", fmt.Errorf("provisioning.Client.Provision: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/v10/projects/" + url.PathEscape(c.cfg.ProjectID) + "/domains"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("provisioning.Client.Provision: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("provisioning.Client.Provision: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("provisioning.Client.Provision: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeAPIError(resp.StatusCode, raw)
	}

	var out addDomainResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.Name == "" {
		return fqdn, nil
	}
	return out.Name, nil
}

// decodeAPIError reads the provider's {"error":{...}} envelope, falling back
// to the status text when the body is not in that shape.
func decodeAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}

	var env errorResponse
	if err := json.Unmarshal(raw, &env); err == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

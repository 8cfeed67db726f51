// Package sanity is a docstore backend for the Sanity Content Lake HTTP API.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	BaseURL    string // overrides the project host, used by tests
	Timeout    time.Duration
}

type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2021-10-21"
	}
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	base := cfg.BaseURL
	if base == "" {
		host := "api.sanity.io"
		// Mutations always go to the live API, the CDN only serves queries.
		if cfg.UseCDN {
			host = "apicdn.sanity.io"
		}
		base = fmt.Sprintf("https://%s.%s", cfg.ProjectID, host)
	}
	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *Client) Name() string { return "sanity" }

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) queryPath() string {
	return fmt.Sprintf("/v%s/data/query/%s", c.cfg.APIVersion, c.cfg.Dataset)
}

func (c *Client) mutatePath() string {
	return fmt.Sprintf("/v%s/data/mutate/%s", c.cfg.APIVersion, c.cfg.Dataset)
}

func (c *Client) mutateBaseURL() string {
	if c.cfg.BaseURL == "" && c.cfg.UseCDN {
		return fmt.Sprintf("https://%s.api.sanity.io", c.cfg.ProjectID)
	}
	return c.baseURL
}

// Query runs a GROQ query and decodes the "result" member into result.
func (c *Client) Query(ctx context.Context, groq string, result any) error {
	u := c.baseURL + c.queryPath() + "?query=" + url.QueryEscape(groq)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("sanity query: %w", err)
	}
	var env queryResponse
	if err := c.do(req, &env); err != nil {
		return err
	}
	if result == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("sanity decode result: %w", err)
	}
	return nil
}

// Mutate submits mutations as one transaction and waits for visibility.
func (c *Client) Mutate(ctx context.Context, mutations ...Mutation) (*MutateResponse, error) {
	data, err := json.Marshal(mutateRequest{Mutations: mutations})
	if err != nil {
		return nil, fmt.Errorf("sanity marshal: %w", err)
	}
	u := c.mutateBaseURL() + c.mutatePath() + "?returnIds=true&visibility=sync"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("sanity mutate: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	var resp MutateResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request, result any) error {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sanity %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, result)
}

func (c *Client) decode(resp *http.Response, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sanity read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("sanity HTTP %d: %s", resp.StatusCode, apiErr.Error.Description)
		}
		return fmt.Errorf("sanity HTTP %d: %s", resp.StatusCode, string(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("sanity decode: %w", err)
		}
	}
	return nil
}

// Package client is an HTTP client for the FARE service.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/fare/internal/config"
	"github.com/tensorplex-labs/fare/internal/report"
	"github.com/tensorplex-labs/fare/pkg/api"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetryMax  = 3
	DefaultRetryWait = 500 * time.Millisecond
)

// Client configuration
type ClientConfig struct {
	BaseURL         string
	Timeout         time.Duration
	RetryMax        int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	ZstdCompression bool
}

// ConfigFromEnv builds a client config from the application config.
func ConfigFromEnv(cfg *config.AppConfig) *ClientConfig {
	return &ClientConfig{
		BaseURL:         cfg.Client.ServerURL,
		Timeout:         cfg.Client.Timeout,
		RetryMax:        cfg.Client.RetryMax,
		RetryWaitMin:    cfg.Client.RetryWait,
		ZstdCompression: true,
	}
}

type Client struct {
	config      *ClientConfig
	restyClient *resty.Client
	encoder     *zstd.Encoder
	decoder     *zstd.Decoder
}

// NewClient creates a new FARE client. A zero RetryMax disables retries.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("client config requires a base URL")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = DefaultRetryMax
	}
	if cfg.RetryWaitMin == 0 {
		cfg.RetryWaitMin = DefaultRetryWait
	}
	if cfg.RetryWaitMax < cfg.RetryWaitMin {
		cfg.RetryWaitMax = 40 * cfg.RetryWaitMin
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil
	// hand the last response back so the StdResponse error reaches the caller
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader("Content-Type", "application/json")

	client := &Client{
		config:      cfg,
		restyClient: restyClient,
	}

	if cfg.ZstdCompression {
		restyClient.SetHeader("Accept-Encoding", "zstd")

		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		client.encoder = encoder

		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		client.decoder = decoder
	}

	log.Debug().
		Str("base_url", cfg.BaseURL).
		Int("retry_max", cfg.RetryMax).
		Str("timeout", cfg.Timeout.String()).
		Bool("zstd", cfg.ZstdCompression).
		Msg("fare client initialized")
	return client, nil
}

// Close cleans up client resources
func (c *Client) Close() {
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
}

func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	resp, err := c.restyClient.R().
		SetContext(ctx).
		Get(api.HealthPath)
	if err != nil {
		return api.HealthResponse{}, fmt.Errorf("failed to make request: %w", err)
	}

	var out api.HealthResponse
	if err := c.unwrap(resp, &out); err != nil {
		return api.HealthResponse{}, err
	}
	return out, nil
}

func (c *Client) Score(ctx context.Context, req api.ScoreRequest) (api.ScoreResponse, error) {
	var out api.ScoreResponse
	err := c.post(ctx, api.ScorePath, req, &out)
	return out, err
}

func (c *Client) Audit(ctx context.Context, req api.AuditRequest) (api.AuditResponse, error) {
	var out api.AuditResponse
	err := c.post(ctx, api.AuditPath, req, &out)
	return out, err
}

func (c *Client) Diagnostics(ctx context.Context, req api.DiagnosticsRequest) (api.DiagnosticsResponse, error) {
	var out api.DiagnosticsResponse
	err := c.post(ctx, api.DiagnosticsPath, req, &out)
	return out, err
}

func (c *Client) Report(ctx context.Context, req api.ReportRequest) (*report.Report, error) {
	var out report.Report
	if err := c.post(ctx, api.ReportPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// post sends request as JSON, zstd compressed when enabled, and decodes the
// StdResponse body into response.
func (c *Client) post(ctx context.Context, path string, request, response any) error {
	jsonData, err := sonic.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req := c.restyClient.R().SetContext(ctx)
	if c.encoder != nil {
		req.SetHeader("Content-Encoding", "zstd").
			SetBody(c.encoder.EncodeAll(jsonData, nil))
	} else {
		req.SetBody(jsonData)
	}

	log.Trace().
		Str("path", path).
		Int("body_size", len(jsonData)).
		Msg("Sending request")

	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return c.unwrap(resp, response)
}

func (c *Client) unwrap(resp *resty.Response, response any) error {
	responseBody := resp.Body()
	if c.decoder != nil && resp.Header().Get("Content-Encoding") == "zstd" {
		decompressed, err := c.decoder.DecodeAll(responseBody, nil)
		if err != nil {
			return fmt.Errorf("failed to decompress response: %w", err)
		}
		responseBody = decompressed
	}

	var std api.StdResponse[json.RawMessage]
	if err := sonic.Unmarshal(responseBody, &std); err != nil {
		if resp.IsError() {
			return fmt.Errorf("HTTP error %d: %s", resp.StatusCode(), string(responseBody))
		}
		return fmt.Errorf("failed to unmarshal StdResponse: %w", err)
	}

	if std.Error != nil {
		return &ServerError{StatusCode: resp.StatusCode(), Message: *std.Error}
	}
	if resp.IsError() {
		return &ServerError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}

	if err := sonic.Unmarshal(std.Body, response); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}
	return nil
}

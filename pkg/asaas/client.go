package asaas

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

	"github.com/angelmondragon/marketbill-backend/pkg/config"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/metrics"
)

const (
	// HeaderAccessToken carries the account (or subaccount) API key.
	HeaderAccessToken = "access_token"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "marketbill-backend"
	maxResponseBytes = 1 << 20
)

// Config is the explicit gateway configuration handed to NewClient.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// ConfigFromApp derives the client configuration from the service config.
func ConfigFromApp(cfg config.AsaasConfig) Config {
	return Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.ResolvedBaseURL(),
		Timeout: cfg.Timeout,
	}
}

// Client is a thin REST wrapper around the gateway's v3 API.
type Client struct {
	apiKey    string
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *logger.Logger
	metrics   *metrics.BillingMetrics
}

// NewClient validates cfg and builds a client. logg and m may be nil.
func NewClient(cfg Config, logg *logger.Logger, m *metrics.BillingMetrics) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("asaas api key is required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("asaas base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid asaas base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   base,
		userAgent: userAgent,
		http:      httpClient,
		logger:    logg,
		metrics:   m,
	}, nil
}

// CallOption customizes a single typed call.
type CallOption func(*callOptions)

type callOptions struct {
	headers map[string]string
}

// WithHeaders overrides request headers for one call, e.g. a subaccount access_token.
func WithHeaders(headers map[string]string) CallOption {
	return func(o *callOptions) {
		if len(headers) == 0 {
			return
		}
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

func collect(opts []CallOption) callOptions {
	var out callOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}

// Request sends one call and returns the raw response body. Any non-2xx
// status or transport failure is returned as *APIError.
func (c *Client) Request(ctx context.Context, method, endpoint string, params url.Values, body any, headers map[string]string) ([]byte, error) {
	op := operationName(method, endpoint)
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := encodeBody(body)
		if err != nil {
			return nil, &APIError{Message: err.Error(), Original: err, Method: method, Endpoint: endpoint}
		}
		reader = bytes.NewReader(payload)
		c.log(ctx, "request", op, map[string]any{"payload": format.RedactSensitive(json.RawMessage(payload))})
	} else {
		c.log(ctx, "request", op, nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &APIError{Message: err.Error(), Original: err, Method: method, Endpoint: endpoint}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderAccessToken, c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveGatewayRequest(op, 0, time.Since(start))
		apiErr := &APIError{Message: buildMessage(0, errorBody{}, err), Original: err, Method: method, Endpoint: endpoint}
		c.log(ctx, "error", op, map[string]any{"error": apiErr.Message})
		return nil, apiErr
	}
	defer resp.Body.Close()
	c.metrics.ObserveGatewayRequest(op, resp.StatusCode, time.Since(start))

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var parsed errorBody
		_ = json.Unmarshal(raw, &parsed)
		apiErr := &APIError{
			Message:  buildMessage(resp.StatusCode, parsed, readErr),
			Status:   resp.StatusCode,
			Errors:   parsed.Errors,
			Original: readErr,
			Method:   method,
			Endpoint: endpoint,
		}
		c.log(ctx, "error", op, map[string]any{"status": resp.StatusCode, "error": apiErr.Message})
		return nil, apiErr
	}
	if readErr != nil {
		return nil, &APIError{Message: readErr.Error(), Status: resp.StatusCode, Original: readErr, Method: method, Endpoint: endpoint}
	}
	c.log(ctx, "response", op, map[string]any{"status": resp.StatusCode})
	return raw, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body, out any, opts []CallOption) error {
	options := collect(opts)
	raw, err := c.Request(ctx, method, endpoint, params, body, options.headers)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Message: fmt.Sprintf("decode response: %v", err), Original: err, Method: method, Endpoint: endpoint}
	}
	return nil
}

// encodeBody prunes nil and empty-string values before the body is sent.
func encodeBody(body any) ([]byte, error) {
	switch typed := body.(type) {
	case []byte:
		return typed, nil
	case json.RawMessage:
		return typed, nil
	}
	pruned, err := format.PruneJSON(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return json.Marshal(pruned)
}

func operationName(method, endpoint string) string {
	segments := strings.Split(strings.Trim(endpoint, "/"), "/")
	resource := "unknown"
	if len(segments) > 0 && segments[0] != "" {
		resource = segments[0]
	}
	suffix := ""
	if len(segments) > 1 {
		suffix = "_by_id"
	}
	return strings.ToLower(method) + "_" + resource + suffix
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"gateway":   "asaas",
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Warn(ctx, fmt.Sprintf("asaas %s failed", op))
	default:
		c.logger.Debug(ctx, fmt.Sprintf("asaas %s", phase))
	}
}

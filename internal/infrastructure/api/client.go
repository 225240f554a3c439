// Package api provides typed HTTP accessors for the admin panel's REST backend.
// Every call is exactly one round-trip; nothing is retried or cached here.
package api

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

	"github.com/erp/adminpanel/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-request identifier for correlating logs
const RequestIDHeader = "X-Request-ID"

const instrumentationName = "github.com/erp/adminpanel/internal/infrastructure/api"

// Client performs JSON round-trips against one REST backend
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	logger     *zap.Logger
	tracer     trace.Tracer
	requests   *telemetry.Counter
	duration   *telemetry.Histogram
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	headers    map[string]string
	logger     *zap.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithTimeout sets the transport timeout. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// WithHeader adds a default header sent with every request
func WithHeader(key, value string) Option {
	return func(o *clientOptions) {
		o.headers[key] = value
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger *zap.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithTracer sets the tracer used for client spans
func WithTracer(tracer trace.Tracer) Option {
	return func(o *clientOptions) {
		o.tracer = tracer
	}
}

// WithMeter sets the meter used for request metrics
func WithMeter(meter metric.Meter) Option {
	return func(o *clientOptions) {
		o.meter = meter
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	o := &clientOptions{
		timeout:   30 * time.Second,
		userAgent: "adminctl/1.0",
		headers:   make(map[string]string),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(instrumentationName)
	}
	if o.meter == nil {
		o.meter = otel.Meter(instrumentationName)
	}

	requests, err := telemetry.NewCounter(o.meter, "adminpanel.api.requests", "REST round-trips by method, route and status", "{request}")
	if err != nil {
		return nil, err
	}
	duration, err := telemetry.NewHistogram(o.meter, "adminpanel.api.duration", "REST round-trip duration", "s", telemetry.HTTPDurationBuckets...)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   o.userAgent,
	}
	for k, v := range o.headers {
		headers[k] = v
	}

	return &Client{
		httpClient: o.httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    headers,
		logger:     o.logger,
		tracer:     o.tracer,
		requests:   requests,
		duration:   duration,
	}, nil
}

// BaseURL returns the backend address the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one round-trip. route is the low-cardinality path template
// used for span names and metric attributes; path is the concrete path.
// A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, route, path string, in, out any) error {
	target := c.baseURL + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ctx, span := c.tracer.Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("http.route", route),
			attribute.String("url.full", target),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	requestID := uuid.NewString()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	}
	c.requests.Inc(ctx, attrs...)
	c.duration.RecordDuration(ctx, elapsed, attrs...)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.Debug("Request failed without response",
			zap.String("method", method),
			zap.String("url", target),
			zap.String("request_id", requestID),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return &NetworkError{Op: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", status))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reading response body")
		return &NetworkError{Op: method, URL: target, Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("url", target),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Duration("duration", elapsed))

	if status < 200 || status > 299 {
		span.SetStatus(codes.Error, http.StatusText(status))
		return &HTTPError{Method: method, URL: target, Status: status, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &DecodeError{Method: method, URL: target, Err: errors.New("empty response body")}
	}
	if err := json.Unmarshal(data, out); err != nil {
		span.RecordError(err)
		return &DecodeError{Method: method, URL: target, Err: err}
	}
	return nil
}

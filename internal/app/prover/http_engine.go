package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/kyp2022/ghostlink/pkg/logger"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultConnectTimeout  = 60 * time.Second
	DefaultResponseTimeout = 10 * time.Minute

	maxResponseBytes = 8 << 20
)

type HTTPEngineConfig struct {
	URL string
	// ConnectTimeout bounds TCP connection establishment and the TLS handshake.
	ConnectTimeout time.Duration
	// ResponseTimeout bounds the wait for the engine's answer once the request was sent.
	ResponseTimeout time.Duration
	// MaxConnectAttempts > 1 retries requests whose connection could not be established.
	// Anything that reached the engine is never retried.
	MaxConnectAttempts int
	InitialBackoff     time.Duration
}

type DialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// HTTPEngine posts claims to a remote proof engine.
type HTTPEngine struct {
	url            string
	client         *http.Client
	maxAttempts    int
	initialBackoff time.Duration
	dial           DialContextFunc
	logger         *logger.Logger
}

func NewHTTPEngine(cfg HTTPEngineConfig, opts ...func(*HTTPEngine)) (*HTTPEngine, error) {
	if cfg.URL == "" {
		return nil, errors.New("proof engine url is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = DefaultResponseTimeout
	}
	if cfg.MaxConnectAttempts < 1 {
		cfg.MaxConnectAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}

	e := &HTTPEngine{
		url:            cfg.URL,
		maxAttempts:    cfg.MaxConnectAttempts,
		initialBackoff: cfg.InitialBackoff,
		dial:           (&net.Dialer{Timeout: cfg.ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext,
		logger:         logger.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           e.dialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ResponseTimeout,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
	}
	e.client = &http.Client{
		Transport: transport,
		Timeout:   cfg.ConnectTimeout + cfg.ResponseTimeout,
	}
	return e, nil
}

func WithEngineLogger(l *logger.Logger) func(*HTTPEngine) {
	return func(e *HTTPEngine) {
		e.logger = l
	}
}

// WithDialContext replaces the dialer used to reach the engine.
func WithDialContext(dial DialContextFunc) func(*HTTPEngine) {
	return func(e *HTTPEngine) {
		e.dial = dial
	}
}

// dialError marks failures that happened before the engine could have seen the request.
type dialError struct {
	err error
}

func (e *dialError) Error() string { return "dial: " + e.err.Error() }
func (e *dialError) Unwrap() error { return e.err }

func (e *HTTPEngine) dialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := e.dial(ctx, network, addr)
	if err != nil {
		return nil, &dialError{err: err}
	}
	return conn, nil
}

func (e *HTTPEngine) Prove(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode proof request: %w", err)
	}

	var out Response
	attempt := 0
	op := func() error {
		attempt++
		resp, err := e.send(ctx, body)
		if err == nil {
			out = resp
			return nil
		}
		var de *dialError
		if errors.As(err, &de) && ctx.Err() == nil {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.initialBackoff
	policy.MaxElapsedTime = 0

	err = backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(e.maxAttempts-1)), ctx),
		func(err error, wait time.Duration) {
			e.logger.WithContext(ctx).Warnf("Proof engine connect attempt %d/%d failed: %v, retrying in %v",
				attempt, e.maxAttempts, err, wait)
		})
	if err != nil {
		return Response{}, classify(ctx, err)
	}
	return out, nil
}

func (e *HTTPEngine) send(ctx context.Context, body []byte) (Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, err
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil || out.Status == "" {
		return Response{}, fmt.Errorf("%w: HTTP %d with undecodable body", ErrMalformedResponse, httpResp.StatusCode)
	}
	if httpResp.StatusCode >= 300 {
		e.logger.WithContext(ctx).Debugf("Proof engine answered HTTP %d with status %q", httpResp.StatusCode, out.Status)
	}
	return out, nil
}

// classify turns transport errors into the package's typed errors. Caller cancellation wins
// over everything else; a connection that never opened is unreachable; any other timeout is
// a proof timeout.
func classify(ctx context.Context, err error) error {
	if Reason(err) != "" {
		return err
	}

	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%w: %v", ErrProofCanceled, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: caller deadline exceeded: %v", ErrProofTimeout, err)
	}

	var de *dialError
	if errors.As(err, &de) {
		return fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
	}

	var ne net.Error
	if (errors.As(err, &ne) && ne.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrProofTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
}

package capabilities

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

// NetworkOption configures HTTPNetwork.
type NetworkOption func(*networkConfig)

type networkConfig struct {
	transport       http.RoundTripper
	tlsConfig       *tls.Config
	headTimeout     time.Duration
	maxRedirects    int
	followRedirects bool
	ssrfProtection  bool
	allowPrivate    bool
}

func defaultNetworkConfig() networkConfig {
	return networkConfig{
		headTimeout:     30 * time.Second,
		maxRedirects:    10,
		followRedirects: true,
	}
}

// WithHeadTimeout bounds the wait for the response head. The body is not
// covered; its lifetime is owned by whoever reads it.
func WithHeadTimeout(d time.Duration) NetworkOption {
	return func(c *networkConfig) {
		if d > 0 {
			c.headTimeout = d
		}
	}
}

// WithMaxRedirects sets the maximum number of redirects to follow.
func WithMaxRedirects(n int) NetworkOption {
	return func(c *networkConfig) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithFollowRedirects controls whether to follow redirects.
func WithFollowRedirects(follow bool) NetworkOption {
	return func(c *networkConfig) {
		c.followRedirects = follow
	}
}

// WithTLSConfig sets the client TLS configuration.
func WithTLSConfig(cfg *tls.Config) NetworkOption {
	return func(c *networkConfig) {
		c.tlsConfig = cfg
	}
}

// WithTransport replaces the round tripper entirely.
func WithTransport(rt http.RoundTripper) NetworkOption {
	return func(c *networkConfig) {
		c.transport = rt
	}
}

// WithSSRFProtection resolves each host once, rejects loopback, private,
// link-local, and multicast addresses (unless allowPrivate), and dials the
// vetted IP directly so DNS cannot be rebound between check and connect.
func WithSSRFProtection(allowPrivate bool) NetworkOption {
	return func(c *networkConfig) {
		c.ssrfProtection = true
		c.allowPrivate = allowPrivate
	}
}

// HTTPNetwork implements ports.Network with net/http. Response bodies are
// streamed, never buffered.
type HTTPNetwork struct {
	client *http.Client
	cfg    networkConfig
}

var _ ports.Network = (*HTTPNetwork)(nil)

// NewHTTPNetwork creates a network provider.
func NewHTTPNetwork(opts ...NetworkOption) *HTTPNetwork {
	cfg := defaultNetworkConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HTTPNetwork{client: createHTTPClient(cfg), cfg: cfg}
}

func createHTTPClient(cfg networkConfig) *http.Client {
	rt := cfg.transport
	if rt == nil {
		transport := &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			TLSClientConfig:       cfg.tlsConfig,
		}
		if cfg.ssrfProtection {
			transport.Proxy = nil
			transport.DialContext = (&guardedDialer{allowPrivate: cfg.allowPrivate}).DialContext
		}
		rt = transport
	}

	client := &http.Client{Transport: rt}
	if !cfg.followRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else {
		client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
			if len(via) >= cfg.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.maxRedirects)
			}
			return nil
		}
	}
	return client
}

// Fetch sends req. ctx governs the request until the head arrives; after
// that the body stays readable until it is closed.
func (n *HTTPNetwork) Fetch(ctx context.Context, req entities.HTTPRequest) (*entities.HTTPResponse, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	reqCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, cancel)
	timer := time.AfterFunc(n.cfg.headTimeout, cancel)

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(reqCtx, method, req.URL, body)
	if err != nil {
		timer.Stop()
		stop()
		cancel()
		return nil, err
	}
	for name, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}

	resp, err := n.client.Do(httpReq)
	headTimedOut := !timer.Stop()
	stopped := stop()
	if err != nil {
		cancel()
		if headTimedOut {
			return nil, fmt.Errorf("no response head within %v: %w", n.cfg.headTimeout, err)
		}
		if !stopped && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	return &entities.HTTPResponse{
		Status:  resp.StatusCode,
		Headers: entities.NormalizeHeaders(resp.Header),
		Body:    &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
	}, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
	once   sync.Once
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.once.Do(c.cancel)
	return err
}

type guardedDialer struct {
	allowPrivate bool
}

func (d *guardedDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		if reason := blockedReason(ip.IP, d.allowPrivate); reason != "" {
			return nil, fmt.Errorf("SSRF protection: %s resolves to %s address %s", host, reason, ip.IP)
		}
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no addresses for %s", host)
	}
	return (&net.Dialer{}).DialContext(ctx, network, net.JoinHostPort(ips[0].IP.String(), port))
}

func blockedReason(ip net.IP, allowPrivate bool) string {
	switch {
	case ip.IsUnspecified():
		return "unspecified"
	case ip.IsMulticast():
		return "multicast"
	case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
		return "link-local"
	case allowPrivate:
		return ""
	case ip.IsLoopback():
		return "loopback"
	case ip.IsPrivate():
		return "private"
	}
	return ""
}

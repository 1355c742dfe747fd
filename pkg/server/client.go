package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/dnscache"

	"github.com/matzehuels/rocks-admin/pkg/errors"
	"github.com/matzehuels/rocks-admin/pkg/manifest"
	"github.com/matzehuels/rocks-admin/pkg/observability"
	"github.com/matzehuels/rocks-admin/pkg/rockspec"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is wrapped by fetch failures answered with 404.
	ErrNotFound = stderrors.New("resource not found")

	// ErrNetwork is wrapped by transport failures and other non-2xx statuses.
	ErrNetwork = stderrors.New("network error")
)

// FetchError is the typed failure of [Client.Fetch].
type FetchError struct {
	Path       string // Path relative to the server root
	StatusCode int    // HTTP status, 0 when no response was received
	Err        error  // ErrNotFound, ErrNetwork or the transport error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches documents from one rocks server.
type Client struct {
	root         *url.URL
	http         *http.Client
	manifestName string
	userAgent    string
	logger       *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default DNS-caching HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithManifestName overrides the manifest file name.
func WithManifestName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.manifestName = name
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets a logger for request tracing at debug level.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client rooted at rawURL.
func New(rawURL string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	root, err := url.Parse(strings.TrimSuffix(rawURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid server URL")
	}
	c := &Client{
		root:         root,
		http:         NewHTTPClient(DefaultTimeout),
		manifestName: manifest.FileName,
		userAgent:    "rocks-admin",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewHTTPClient returns an HTTP client whose dialer resolves hosts through
// an in-process DNS cache.
func NewHTTPClient(timeout time.Duration) *http.Client {
	resolver := &dnscache.Resolver{}
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				ips, err := resolver.LookupHost(ctx, host)
				if err != nil {
					return nil, err
				}
				var lastErr error
				for _, ip := range ips {
					conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
					if err == nil {
						return conn, nil
					}
					lastErr = err
				}
				return nil, fmt.Errorf("dial %s: %w", host, lastErr)
			},
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// URL returns the absolute address of path.
func (c *Client) URL(path string) string {
	return c.root.ResolveReference(&url.URL{Path: path}).String()
}

// Fetch downloads path. Any non-2xx status is a *FetchError.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &FetchError{Path: path, Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(path, resp.StatusCode); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Path: path, StatusCode: 0, Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	return body, nil
}

// Exists probes path with HEAD and reports true only for status 200.
// Transport failures degrade to false.
func (c *Client) Exists(ctx context.Context, path string) bool {
	resp, err := c.do(ctx, http.MethodHead, path)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Manifest fetches and parses the repository index.
func (c *Client) Manifest(ctx context.Context) (*manifest.Manifest, error) {
	body, err := c.Fetch(ctx, c.manifestName)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "fetch manifest")
	}
	return manifest.Parse(ctx, string(body))
}

// RockspecText fetches the specification document of name@ver.
func (c *Client) RockspecText(ctx context.Context, name, ver string) (string, error) {
	body, err := c.Fetch(ctx, rockspec.FileName(name, ver))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFetch, err, "fetch rockspec %s@%s", name, ver)
	}
	return string(body), nil
}

// Rockspec fetches and parses the specification document of name@ver.
func (c *Client) Rockspec(ctx context.Context, name, ver string) (*rockspec.Spec, error) {
	text, err := c.RockspecText(ctx, name, ver)
	if err != nil {
		return nil, err
	}
	return rockspec.Parse(ctx, text)
}

// FileExists probes the artifact of name@ver for the given arch.
func (c *Client) FileExists(ctx context.Context, name, ver, arch string) bool {
	return c.Exists(ctx, ArtifactName(name, ver, arch))
}

// ArtifactName returns the server path of an artifact.
func ArtifactName(name, ver, arch string) string {
	switch arch {
	case manifest.ArchAll, manifest.ArchSource:
		return fmt.Sprintf("%s-%s.%s.rock", name, ver, arch)
	default:
		return fmt.Sprintf("%s-%s.%s", name, ver, arch)
	}
}

func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	target := c.URL(path)
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, req.URL.Host, req.URL.Path, err)
		if c.logger != nil {
			c.logger.Debug("request failed", "method", method, "url", target, "err", err)
		}
		return nil, err
	}
	elapsed := time.Since(start)
	hooks.OnResponse(ctx, method, req.URL.Host, req.URL.Path, resp.StatusCode, elapsed)
	if c.logger != nil {
		c.logger.Debug("request", "method", method, "url", target, "status", resp.StatusCode, "elapsed", elapsed)
	}
	return resp, nil
}

func checkStatus(path string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return &FetchError{Path: path, StatusCode: code, Err: ErrNotFound}
	default:
		return &FetchError{Path: path, StatusCode: code, Err: ErrNetwork}
	}
}

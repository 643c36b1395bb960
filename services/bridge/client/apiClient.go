package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("client")

const (
	apiPrefix           = "/api/v1/"
	maxResponseBodySize = 4 << 20 // 4MB
)

// ArgsAPIClient defines the arguments needed to create an API client
type ArgsAPIClient struct {
	Credential common.Credential
	BaseDomain string
	Scheme     string
	// BaseURL, when set, is used instead of the {scheme}://{prefix}.{domain} composition
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type apiClient struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
}

// NewAPIClient creates a new authenticated client for the upstream REST API
func NewAPIClient(args ArgsAPIClient) (*apiClient, error) {
	if len(args.Credential.APIKey) == 0 {
		return nil, fmt.Errorf("%w: empty API key", ErrNilArgument)
	}
	if len(args.Credential.StorePrefix) == 0 {
		return nil, fmt.Errorf("%w: empty store prefix", ErrNilArgument)
	}
	if len(args.BaseDomain) == 0 && len(args.BaseURL) == 0 {
		return nil, fmt.Errorf("%w: empty base domain", ErrNilArgument)
	}

	scheme := args.Scheme
	if scheme == "" {
		scheme = "https"
	}
	baseURL := strings.TrimSuffix(args.BaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s://%s.%s", scheme, args.Credential.StorePrefix, args.BaseDomain)
	}

	return &apiClient{
		baseURL:   baseURL,
		apiKey:    args.Credential.APIKey,
		userAgent: args.UserAgent,
		client: &http.Client{
			Timeout: args.Timeout,
		},
	}, nil
}

// Get performs an authenticated GET on the provided path and returns the raw body
func (c *apiClient) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.buildURL(path, query)

	return c.do(ctx, http.MethodGet, target, path)
}

// Post performs an authenticated, body-less POST on the provided path
func (c *apiClient) Post(ctx context.Context, path string) error {
	target := c.buildURL(path, nil)

	_, err := c.do(ctx, http.MethodPost, target, path)
	return err
}

func (c *apiClient) buildURL(path string, query url.Values) string {
	target := c.baseURL + apiPrefix + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	return target
}

func (c *apiClient) do(ctx context.Context, method string, target string, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log.Debug("requesting data", "method", method, "url", target)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, unwrapURLError(err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	log.Debug("received response", "method", method, "url", target, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Path: path}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of %s: %v", ErrTransport, path, err)
	}
	if len(body) > maxResponseBodySize {
		return nil, fmt.Errorf("%w: body of %s exceeds %d bytes", ErrShape, path, maxResponseBodySize)
	}

	return body, nil
}

// unwrapURLError drops the *url.Error envelope, the method and path are already part of the message
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}

	return err
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *apiClient) IsInterfaceNil() bool {
	return c == nil
}

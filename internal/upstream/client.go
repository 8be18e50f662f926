package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Halfdees/Halo-csr-wrapper/internal/constant"
	"github.com/Halfdees/Halo-csr-wrapper/internal/logger"
)

// maxBodyBytes caps how much of a Grunt reply is read.
const maxBodyBytes = 1 << 20

// Client is the set of Grunt calls the relay makes.
type Client interface {
	// FetchSpartan calls /spartan for a gamertag and playlist in one hop.
	FetchSpartan(ctx context.Context, gamertag, playlist string) (*Rating, error)
	// ResolveXUID calls /xuid to turn a gamertag into an XUID.
	ResolveXUID(ctx context.Context, gamertag string) (string, error)
	// FetchCSR calls /csr for an XUID and playlist.
	FetchCSR(ctx context.Context, xuid, playlist string) (*Rating, error)
}

// HTTPClient talks to Grunt over HTTP. It is safe for concurrent use.
type HTTPClient struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	logger     *logger.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a Grunt client. Trailing slashes on baseURL are ignored.
func NewHTTPClient(log *logger.Logger, baseURL, secret string, timeout time.Duration) *HTTPClient {
	if log == nil {
		log = logger.Production()
	}
	if timeout <= 0 {
		timeout = constant.DefaultUpstreamTimeout
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

func (c *HTTPClient) FetchSpartan(ctx context.Context, gamertag, playlist string) (*Rating, error) {
	body, err := c.get(ctx, "/spartan", url.Values{"gt": {gamertag}, "playlist": {playlist}})
	if err != nil {
		return nil, err
	}
	return decodeRating(body)
}

func (c *HTTPClient) ResolveXUID(ctx context.Context, gamertag string) (string, error) {
	body, err := c.get(ctx, "/xuid", url.Values{"gt": {gamertag}})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: %w", ErrXUIDNotFound, err)
		}
		return "", err
	}

	var raw xuidBody
	if err := decodeObject(body, &raw); err != nil {
		return "", err
	}

	xuid := parseXUID(raw.XUID)
	if xuid == "" {
		return "", ErrXUIDNotFound
	}
	return xuid, nil
}

func (c *HTTPClient) FetchCSR(ctx context.Context, xuid, playlist string) (*Rating, error) {
	body, err := c.get(ctx, "/csr", url.Values{"xuid": {xuid}, "playlist": {playlist}})
	if err != nil {
		return nil, err
	}
	return decodeRating(body)
}

// get issues an authenticated GET and returns the body of a 2xx reply.
// Non-2xx replies become *StatusError carrying the upstream body.
func (c *HTTPClient) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	target := c.baseURL + endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set(constant.HeaderUpstreamAuth, c.secret)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream %s response: %w", endpoint, err)
	}

	c.logger.Debug("Upstream call completed",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}

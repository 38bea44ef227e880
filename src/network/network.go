package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"spread-observer/src/helpers"
	"spread-observer/src/interfaces"
	"spread-observer/src/logger"
	"spread-observer/src/models"

	"golang.org/x/time/rate"
)

type AsyncNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Client       *http.Client
	Logger       *logger.Logger
	limiter      *rate.Limiter
}

// Option configures the network manager
type Option func(*AsyncNetworkManager)

// WithHTTPClient replaces the default client (tests inject httptest transports).
func WithHTTPClient(client *http.Client) Option {
	return func(nm *AsyncNetworkManager) {
		nm.Client = client
	}
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger, opts ...Option) *AsyncNetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent, log.Named("ProxyManager")),
		Logger:       log,
		limiter:      rate.NewLimiter(rate.Inf, 1),
	}
	if cfg.Network.RateLimit > 0 {
		nm.limiter = rate.NewLimiter(rate.Limit(cfg.Network.RateLimit), cfg.Network.RateLimit)
	}
	nm.Client = nm.createClient()

	for _, opt := range opts {
		opt(nm)
	}
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		Proxy:           nm.ProxyManager.ProxyFunc,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation. Every attempt is
// bounded by ctx, so a caller deadline caps the total time spent here.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewValidationError(fmt.Sprintf("invalid url %q: %v", urlStr, err))
	}

	if len(params) > 0 {
		q := reqUrl.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		reqUrl.RawQuery = q.Encode()
	}
	finalUrl := reqUrl.String()

	maxRetries := nm.Config.Network.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(i*i) * 250 * time.Millisecond):
			case <-ctx.Done():
				return nil, helpers.NewNetworkError("request cancelled", ctx.Err())
			}
			nm.ProxyManager.RotateProxy()
		}

		if err := nm.limiter.Wait(ctx); err != nil {
			return nil, helpers.NewNetworkError("rate limit wait", err)
		}

		body, retry, err := nm.do(ctx, finalUrl)
		if err == nil {
			return body, nil
		}
		lastErr = err
		nm.Logger.Debug("Request to %s failed (attempt %d/%d): %v", reqUrl.Host, i+1, maxRetries+1, err)
		if !retry || ctx.Err() != nil {
			break
		}
	}

	return nil, helpers.NewNetworkError(fmt.Sprintf("GET %s", reqUrl.Host), lastErr)
}

// -----------------------------------------------------------------------------

// do executes one attempt. retry reports whether another attempt may help.
func (nm *AsyncNetworkManager) do(ctx context.Context, finalUrl string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalUrl, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Referer", "https://gu.qq.com/")

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		nm.Logger.Info("Request blocked (%d). Rotating proxy.", resp.StatusCode)
		return nil, true, fmt.Errorf("blocked (status %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return body, false, nil
}

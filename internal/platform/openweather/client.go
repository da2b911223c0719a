package openweather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/sethvargo/go-retry"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultRetryBaseDelay = time.Second

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// retryStatuses are the HTTP statuses that are retried with backoff.
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client fetches current weather from OpenWeatherMap.
// A Client is safe for concurrent use.
type Client struct {
	apiKey         string
	baseURL        string
	language       string
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	httpClient     *http.Client
	logger         *slog.Logger
}

// NewHTTPClient returns the pooled HTTP client the weather client is meant to
// share for the lifetime of the process.
func NewHTTPClient() *http.Client {
	return cleanhttp.DefaultPooledClient()
}

// NewClient creates a weather client.
// If httpClient is nil, a new pooled client is created.
// If logger is nil, a default logger will be used.
func NewClient(cfg config.WeatherConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		apiKey:         cfg.APIKey,
		baseURL:        cfg.BaseURL,
		language:       cfg.Language,
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		httpClient:     httpClient,
		logger:         logger.With(slog.String("component", "weather_client")),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.retryBaseDelay <= 0 {
		c.retryBaseDelay = defaultRetryBaseDelay
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.language == "" {
		c.language = "ja"
	}

	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// statusResponse carries a retryable response out of the retry loop.
type statusResponse struct {
	status int
	body   []byte
}

func (s *statusResponse) Error() string {
	return fmt.Sprintf("unexpected status %d", s.status)
}

// Fetch returns the current weather for location.
// It returns nil and no error when no API key is configured.
// Every failure is an *Error.
func (c *Client) Fetch(ctx context.Context, location string) (*domain.Weather, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	query, err := ValidateLocation(location)
	if err != nil {
		log.Warn("invalid weather location", slog.String("error", err.Error()))
		return nil, &Error{Kind: KindValidation, Location: location, Err: err}
	}

	if !c.Enabled() {
		log.Warn("weather API key is not configured")
		return nil, nil
	}

	reqURL, err := c.requestURL(query)
	if err != nil {
		log.Error("invalid weather API URL", slog.String("error", err.Error()))
		return nil, &Error{Kind: KindAPI, Location: query, Err: fmt.Errorf("%w: %v", ErrAPI, err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(uint64(c.maxRetries), retry.NewExponential(c.retryBaseDelay))

	var (
		status  int
		body    []byte
		attempt int
	)
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var reqErr error
		status, body, reqErr = c.get(ctx, reqURL)
		if reqErr != nil {
			if ctx.Err() != nil {
				return reqErr
			}
			log.Debug("weather request failed, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", reqErr.Error()))
			return retry.RetryableError(reqErr)
		}
		if retryStatuses[status] {
			log.Debug("weather API returned retryable status",
				slog.Int("attempt", attempt),
				slog.Int("status", status))
			return retry.RetryableError(&statusResponse{status: status, body: body})
		}
		return nil
	})
	if err != nil {
		return nil, c.classifyFailure(ctx, log, query, err)
	}

	if status < 200 || status > 299 {
		return nil, c.statusError(ctx, log, query, status, body)
	}

	weather, err := parseWeather(body, query)
	if err != nil {
		log.Error("failed to parse weather response",
			slog.String("location", query),
			slog.String("error", err.Error()))
		return nil, &Error{Kind: KindParse, Location: query, StatusCode: status, Err: err}
	}

	log.Debug("weather fetched",
		slog.String("location", query),
		slog.String("condition", weather.Condition),
		slog.Int("attempts", attempt))
	return weather, nil
}

// FetchSafe is Fetch for call sites that must not fail when weather is
// unavailable: errors are logged and nil is returned.
func (c *Client) FetchSafe(ctx context.Context, location string) *domain.Weather {
	weather, err := c.Fetch(ctx, location)
	if err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Warn("weather lookup failed",
			slog.String("location", location),
			slog.String("kind", string(KindOf(err))),
			slog.String("error", err.Error()))
		return nil
	}
	return weather
}

func (c *Client) requestURL(location string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("q", location)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("lang", c.language)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// get performs one request. Transport errors are returned without the
// request URL, which carries the API key.
func (c *Client) get(ctx context.Context, reqURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, stripURL(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, stripURL(err)
	}

	return resp.StatusCode, body, nil
}

// classifyFailure maps an error returned by the retry loop to an *Error.
func (c *Client) classifyFailure(ctx context.Context, log *slog.Logger, location string, err error) *Error {
	var sr *statusResponse
	if errors.As(err, &sr) {
		return c.statusError(ctx, log, location, sr.status, sr.body)
	}

	if ctx.Err() != nil || isTimeout(err) {
		log.Error("weather request timed out",
			slog.String("location", location),
			slog.String("error", err.Error()))
		return &Error{Kind: KindTimeout, Location: location, Err: fmt.Errorf("%w: %w", ErrTimeout, err)}
	}

	log.Error("failed to connect to weather API",
		slog.String("location", location),
		slog.String("error", err.Error()))
	return &Error{Kind: KindConnection, Location: location, Err: fmt.Errorf("%w: %w", ErrConnection, err)}
}

// statusError maps a non-2xx status to an *Error and logs it at the level
// matching its severity.
func (c *Client) statusError(ctx context.Context, log *slog.Logger, location string, status int, body []byte) *Error {
	var (
		kind     Kind
		sentinel error
		level    = slog.LevelError
	)

	switch {
	case status == http.StatusUnauthorized:
		kind, sentinel = KindAuth, ErrUnauthorized
	case status == http.StatusForbidden:
		kind, sentinel = KindAuth, ErrForbidden
	case status == http.StatusNotFound:
		kind, sentinel, level = KindNotFound, ErrLocationNotFound, slog.LevelWarn
	case status == http.StatusTooManyRequests:
		kind, sentinel, level = KindRateLimited, ErrRateLimited, slog.LevelWarn
	case status >= 500:
		kind, sentinel = KindServer, ErrServer
	default:
		kind, sentinel = KindAPI, ErrAPI
	}

	wrapped := sentinel
	if msg := apiMessage(body); msg != "" {
		wrapped = fmt.Errorf("%w: %s", sentinel, msg)
	}

	log.Log(ctx, level, "weather API returned an error",
		slog.String("location", location),
		slog.Int("status", status),
		slog.String("kind", string(kind)))

	return &Error{Kind: kind, Location: location, StatusCode: status, Err: wrapped}
}

func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

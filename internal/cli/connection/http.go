package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/internal/infra/buildinfo"
	"github.com/yndnr/hostdeck-go/internal/telemetry/logger"
	"github.com/yndnr/hostdeck-go/internal/telemetry/metric"
	"github.com/yndnr/hostdeck-go/pkg/token"
)

// DefaultTimeout bounds every round trip, renewal included.
const DefaultTimeout = 10 * time.Second

// Reasons passed to Navigator.RedirectToSignIn.
const (
	ReasonRenewalFailed = "renewal_failed"
	ReasonNoRenewal     = "no_renewal_credential"
	ReasonRetryRejected = "retry_rejected"
)

// CredentialStore is the part of the session store the gateway needs.
type CredentialStore interface {
	AccessCredential() string
	RenewalCredential() string
	SetCredentials(ctx context.Context, pair domain.CredentialPair) error
	Clear(ctx context.Context) error
}

// Navigator forces the user back to sign-in after the session is lost.
type Navigator interface {
	RedirectToSignIn(reason string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(reason string)

// RedirectToSignIn implements Navigator.
func (f NavigatorFunc) RedirectToSignIn(reason string) { f(reason) }

// HTTPClient is the session gateway: every backend call goes through it.
//
// It attaches the access credential, renews it once on an authorization
// failure and resends the request. Renewal is shared by concurrent
// requests holding the same renewal credential.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	store     CredentialStore
	navigator Navigator
	limiter   *rate.Limiter
	metrics   *metric.Registry
	logger    logger.Logger
	userAgent string

	renewals singleflight.Group
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithTLSConfig sets the TLS configuration used for https servers.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = cfg
		c.client.Transport = transport
	}
}

// WithRateLimit limits outbound requests to rps with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithNavigator sets the sign-in navigator.
func WithNavigator(n Navigator) Option {
	return func(c *HTTPClient) { c.navigator = n }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// NewHTTPClient creates a gateway for server backed by store.
func NewHTTPClient(server string, store CredentialStore, opts ...Option) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL:   baseURL,
		store:     store,
		client:    &http.Client{Timeout: DefaultTimeout},
		navigator: NavigatorFunc(func(string) {}),
		logger:    logger.Default(),
		userAgent: buildinfo.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "gateway")
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// retryMarkerKey flags a request chain that already went through renewal.
type retryMarkerKey struct{}

func withRetryMarker(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryMarkerKey{}, true)
}

func retryMarked(ctx context.Context) bool {
	marked, _ := ctx.Value(retryMarkerKey{}).(bool)
	return marked
}

// Do sends one logical request.
//
// Responses other than 401 are returned unchanged, and so is a 401 from a
// public auth endpoint. On any other 401 the access credential is renewed
// and the request resent once; the caller receives the resend's response.
// When renewal is impossible or fails, the session is cleared, the
// navigator is told once and an error wrapping domain.ErrUnauthorized is
// returned. Network errors and timeouts never trigger renewal.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		payload = data
	}

	reqID := logger.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = domain.NewRequestID()
		ctx = logger.WithRequestID(ctx, reqID)
	}
	log := c.logger.With("request_id", reqID, "method", method, "path", path)

	public := isPublicPath(path)
	access := ""
	if !public {
		access = c.store.AccessCredential()
	}

	resp, err := c.send(ctx, method, path, payload, access, reqID)
	if err != nil {
		log.Debug("request failed", "error", err)
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || public {
		return resp, nil
	}
	drain(resp)

	if retryMarked(ctx) {
		log.Warn("request rejected after renewal")
		return nil, c.signOut(ctx, ReasonRetryRejected, nil)
	}
	ctx = withRetryMarker(ctx)

	// Another request may have renewed while this one was in flight.
	if current := c.store.AccessCredential(); current != "" && !token.Equal(current, access) {
		log.Debug("resending with newer access credential", "fingerprint", token.Fingerprint(current))
		return c.resend(ctx, method, path, payload, current, reqID)
	}

	renewal := c.store.RenewalCredential()
	if renewal == "" {
		log.Info("authorization failed without renewal credential")
		return nil, c.signOut(ctx, ReasonNoRenewal, domain.ErrNoRenewalCredential)
	}

	// The shared renewal ignores the starting caller's cancellation; the
	// client timeout bounds it.
	v, err, shared := c.renewals.Do(renewal, func() (any, error) {
		return c.renewAndStore(context.WithoutCancel(ctx), renewal)
	})
	if shared && c.metrics != nil {
		c.metrics.IncRenewal("shared")
	}
	if err != nil {
		// The session was cleared by whichever caller ran the renewal.
		return nil, domain.ErrUnauthorized.WithCause(err)
	}

	pair := v.(domain.CredentialPair)
	log.Debug("resending after renewal", "fingerprint", token.Fingerprint(pair.Access))
	return c.resend(ctx, method, path, payload, pair.Access, reqID)
}

// resend sends the marked request again. A second 401 is terminal.
func (c *HTTPClient) resend(ctx context.Context, method, path string, payload []byte, access, reqID string) (*http.Response, error) {
	resp, err := c.send(ctx, method, path, payload, access, reqID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		c.logger.Warn("request rejected after renewal", "request_id", reqID, "path", path)
		return nil, c.signOut(ctx, ReasonRetryRejected, nil)
	}
	return resp, nil
}

// renewAndStore runs one renewal and commits the result. On failure the
// session is cleared here, so concurrent waiters do not clear it again.
func (c *HTTPClient) renewAndStore(ctx context.Context, renewal string) (domain.CredentialPair, error) {
	pair, err := c.renew(ctx, renewal)
	if err == nil {
		err = c.store.SetCredentials(ctx, pair)
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.IncRenewal("failure")
		}
		c.logger.Warn("credential renewal failed", "error", err)
		_ = c.signOut(ctx, ReasonRenewalFailed, err)
		return domain.CredentialPair{}, domain.ErrRenewalFailed.WithCause(err)
	}

	if c.metrics != nil {
		c.metrics.IncRenewal("success")
	}
	c.logger.Info("credential renewed", "fingerprint", token.Fingerprint(pair.Access))
	return pair, nil
}

// renew calls the renewal endpoint. The renewal credential travels in the
// body only.
func (c *HTTPClient) renew(ctx context.Context, renewal string) (domain.CredentialPair, error) {
	payload, err := json.Marshal(renewRequest{RefreshToken: renewal})
	if err != nil {
		return domain.CredentialPair{}, err
	}

	resp, err := c.send(ctx, http.MethodPost, PathRefresh, payload, "", logger.RequestIDFromContext(ctx))
	if err != nil {
		return domain.CredentialPair{}, err
	}

	var out renewResponse
	if err := ParseEnvelope(resp, &out); err != nil {
		return domain.CredentialPair{}, err
	}
	if out.Token == "" {
		return domain.CredentialPair{}, domain.ErrBadResponse.WithDetails("renewal response has no token")
	}

	// The backend may keep the renewal credential and omit it.
	next := domain.CredentialPair{
		Access:    out.Token,
		Renewal:   out.RefreshToken,
		ExpiresAt: unixTime(out.ExpiresAt),
	}
	if next.Renewal == "" {
		next.Renewal = renewal
	}
	return next, nil
}

// signOut clears the session and redirects to sign-in, once per failed
// request chain.
func (c *HTTPClient) signOut(ctx context.Context, reason string, cause error) error {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear session", "error", err)
	}
	if c.metrics != nil {
		c.metrics.IncForcedSignOut(reason)
	}
	c.navigator.RedirectToSignIn(reason)

	if cause == nil {
		return domain.ErrUnauthorized
	}
	return domain.ErrUnauthorized.WithCause(cause)
}

// send performs a single HTTP round trip.
func (c *HTTPClient) send(ctx context.Context, method, path string, payload []byte, access, reqID string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, domain.ErrNetwork.WithDetails("rate limit wait").WithCause(err)
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		err = classifyError(err)
		c.observe(method, outcomeForError(err), start)
		return nil, err
	}
	c.observe(method, metric.OutcomeForStatus(resp.StatusCode), start)
	return resp, nil
}

func (c *HTTPClient) observe(method, outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveRequest(method, outcome, time.Since(start))
	}
}

func classifyError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.ErrTimeout.WithCause(err)
	}
	return domain.ErrNetwork.WithCause(err)
}

func outcomeForError(err error) string {
	if errors.Is(err, domain.ErrTimeout) {
		return metric.OutcomeTimeout
	}
	return metric.OutcomeNetworkError
}

// drain discards and closes a response body so the connection is reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

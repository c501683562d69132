// Package backend is the REST client for the platform backend.
//
// Every call returns a classified error so upper layers can route
// entitlement denials to the paywall and everything else to the
// matching surface. Idempotent GETs are retried; all calls share one
// circuit breaker so a flapping backend stops being hammered.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	retry "github.com/avast/retry-go"
	cache "github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker/v2"

	"github.com/sportlink/swipedeck/internal/domain/model"
	"github.com/sportlink/swipedeck/internal/domain/quota"
	"github.com/sportlink/swipedeck/pkg/logger"
	"github.com/sportlink/swipedeck/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout          = 10 * time.Second
	defaultRetryAttempts    = 3
	defaultRetryDelay       = 200 * time.Millisecond
	defaultMatchesTTL       = 30 * time.Second
	defaultBreakerThreshold = 5
	defaultBreakerTimeout   = 30 * time.Second

	matchesCacheKey = "matches"
)

// Discovery is the card-fetching surface consumed by the deck.
type Discovery interface {
	Discover(ctx context.Context, limit int, filter string) ([]model.Card, model.ProfileType, error)
}

// Swiper submits committed decisions.
type Swiper interface {
	Swipe(ctx context.Context, cardID string, direction model.Direction) (model.SwipeOutcome, error)
}

// QuotaSource serves quota snapshots.
type QuotaSource interface {
	Stats(ctx context.Context) (quota.State, error)
}

// ContactSource reveals direct contact details.
type ContactSource interface {
	Contact(ctx context.Context, userID string) (model.ContactInfo, error)
}

// MatchSource lists established matches.
type MatchSource interface {
	Matches(ctx context.Context) ([]model.Match, error)
}

// httpResult carries a completed exchange through the breaker.
type httpResult struct {
	status int
	body   []byte
}

// Client talks to the platform backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	authToken  string

	retryAttempts uint
	retryDelay    time.Duration

	breakerThreshold uint32
	breakerTimeout   time.Duration
	breaker          *gobreaker.CircuitBreaker[httpResult]

	matchesTTL time.Duration
	matches    *cache.Cache

	log logger.Logger
}

// NewClient creates a backend client with configuration options.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		timeout:          defaultTimeout,
		retryAttempts:    defaultRetryAttempts,
		retryDelay:       defaultRetryDelay,
		breakerThreshold: defaultBreakerThreshold,
		breakerTimeout:   defaultBreakerTimeout,
		matchesTTL:       defaultMatchesTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	c.breaker = gobreaker.NewCircuitBreaker[httpResult](gobreaker.Settings{
		Name:    "backend",
		Timeout: c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.breakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(int(to))
			if c.log != nil {
				c.log.Warn(context.Background(), "circuit breaker state changed",
					logger.String("name", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			}
		},
	})

	c.matches = cache.New(c.matchesTTL, time.Minute)

	return c
}

// Discover fetches candidate cards, optionally filtered by profile type.
// The backend enforces the filter entitlement; a 403 with the
// subscription marker comes back as ErrFeatureDenied.
func (c *Client) Discover(ctx context.Context, limit int, filter string) ([]model.Card, model.ProfileType, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if filter != "" && filter != "all" {
		q.Set("profile_type_filter", filter)
	}

	var resp struct {
		Success         bool              `json:"success"`
		Users           []model.Card      `json:"users"`
		UserProfileType model.ProfileType `json:"user_profile_type"`
	}
	if err := c.getJSON(ctx, "/api/discover", q, ErrFeatureDenied, &resp); err != nil {
		return nil, "", err
	}

	metrics.RecordCardsFetched(len(resp.Users))

	return resp.Users, resp.UserProfileType, nil
}

// Swipe submits one decision. Not retried: the backend mutates state
// and a duplicate like could double-consume quota.
func (c *Client) Swipe(ctx context.Context, cardID string, direction model.Direction) (model.SwipeOutcome, error) {
	payload, err := json.Marshal(struct {
		SwipedUserID string `json:"swiped_user_id"`
		Action       string `json:"action"`
	}{
		SwipedUserID: cardID,
		Action:       string(direction),
	})
	if err != nil {
		return model.SwipeOutcome{}, fmt.Errorf("encode swipe payload: %w", err)
	}

	res, err := c.do(ctx, http.MethodPost, "/api/swipe", nil, payload)
	if err != nil {
		return model.SwipeOutcome{}, c.classify("/api/swipe", http.MethodPost, res, err, ErrQuotaExceeded)
	}

	var resp struct {
		Success bool   `json:"success"`
		Match   bool   `json:"match"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(res.body, &resp); err != nil {
		return model.SwipeOutcome{}, &Error{Kind: ErrServer, StatusCode: res.status, Message: "malformed swipe response"}
	}

	return model.SwipeOutcome{
		CardID:  cardID,
		Matched: resp.Match,
		Message: resp.Message,
	}, nil
}

// Stats fetches the authoritative quota snapshot.
func (c *Client) Stats(ctx context.Context) (quota.State, error) {
	var st quota.State
	if err := c.getJSON(ctx, "/api/swipe/stats", nil, ErrServer, &st); err != nil {
		return quota.State{}, err
	}
	return st, nil
}

// Contact reveals the direct contact details of one user. A 403 with
// the subscription marker comes back as ErrFeatureDenied.
func (c *Client) Contact(ctx context.Context, userID string) (model.ContactInfo, error) {
	var resp struct {
		Name        string            `json:"name"`
		LastName    string            `json:"last_name"`
		ProfileType model.ProfileType `json:"profile_type"`
		ContactInfo struct {
			Email     string `json:"email"`
			Phone     string `json:"phone"`
			Instagram string `json:"instagram"`
			Twitter   string `json:"twitter"`
		} `json:"contact_info"`
	}
	if err := c.getJSON(ctx, "/api/direct-contact/"+url.PathEscape(userID), nil, ErrFeatureDenied, &resp); err != nil {
		return model.ContactInfo{}, err
	}

	return model.ContactInfo{
		Name:        resp.Name,
		LastName:    resp.LastName,
		ProfileType: resp.ProfileType,
		Email:       resp.ContactInfo.Email,
		Phone:       resp.ContactInfo.Phone,
		Instagram:   resp.ContactInfo.Instagram,
		Twitter:     resp.ContactInfo.Twitter,
	}, nil
}

// Matches lists established matches. Served from a short-lived cache
// because the chat surface polls it.
func (c *Client) Matches(ctx context.Context) ([]model.Match, error) {
	if cached, ok := c.matches.Get(matchesCacheKey); ok {
		if ms, ok := cached.([]model.Match); ok {
			return ms, nil
		}
	}

	var resp struct {
		Success bool          `json:"success"`
		Matches []model.Match `json:"matches"`
	}
	if err := c.getJSON(ctx, "/api/swipe/matches", nil, ErrServer, &resp); err != nil {
		return nil, err
	}

	c.matches.SetDefault(matchesCacheKey, resp.Matches)

	return resp.Matches, nil
}

// InvalidateMatches drops the cached matches list, forcing the next
// Matches call to hit the backend.
func (c *Client) InvalidateMatches() {
	c.matches.Delete(matchesCacheKey)
}

// getJSON performs a retried GET and decodes the response body into out.
// deniedKind is the sentinel used when the endpoint answers 403.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, deniedKind error, out any) error {
	var res httpResult

	err := retry.Do(
		func() error {
			var doErr error
			res, doErr = c.do(ctx, http.MethodGet, path, q, nil)
			if doErr != nil {
				return c.classify(path, http.MethodGet, res, doErr, deniedKind)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(res.body, out); err != nil {
		return &Error{Kind: ErrServer, StatusCode: res.status, Message: "malformed response body"}
	}

	return nil
}

// do performs one HTTP exchange through the circuit breaker. Transport
// failures and 5xx answers count against the breaker; 4xx answers are
// returned as errors but count as successes (the backend is healthy,
// the request was refused).
func (c *Client) do(ctx context.Context, method, path string, q url.Values, payload []byte) (httpResult, error) {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	start := time.Now()
	res, err := c.breaker.Execute(func() (httpResult, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, reqErr := http.NewRequestWithContext(ctx, method, endpoint, body)
		if reqErr != nil {
			return httpResult{}, reqErr
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.authToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.authToken)
		}

		httpRes, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return httpResult{}, doErr
		}
		defer func() { _ = httpRes.Body.Close() }()

		raw, readErr := io.ReadAll(httpRes.Body)
		if readErr != nil {
			return httpResult{}, readErr
		}

		if httpRes.StatusCode >= http.StatusInternalServerError {
			return httpResult{status: httpRes.StatusCode, body: raw}, &Error{
				Kind:       ErrServer,
				StatusCode: httpRes.StatusCode,
				Message:    errorMessage(raw),
			}
		}

		return httpResult{status: httpRes.StatusCode, body: raw}, nil
	})

	metrics.RecordBackendRequest(path, strconv.Itoa(res.status))
	metrics.RecordBackendLatency(path, float64(time.Since(start).Milliseconds()))

	if err != nil {
		return res, err
	}

	if res.status >= http.StatusBadRequest {
		return res, statusError(res)
	}

	return res, nil
}

// classify folds transport, breaker and status failures into one
// classified *Error. deniedKind is the sentinel for a 403 answer on
// the calling endpoint.
func (c *Client) classify(path, method string, res httpResult, err error, deniedKind error) error {
	var be *Error
	if errors.As(err, &be) {
		if be.StatusCode == http.StatusForbidden {
			be.Kind = deniedKind
		}
		metrics.RecordErrorByEndpoint(path, method, be.Kind.Error())
		return be
	}

	msg := err.Error()
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		msg = "backend temporarily unavailable"
	}

	metrics.RecordErrorByEndpoint(path, method, ErrNetwork.Error())

	return &Error{Kind: ErrNetwork, StatusCode: res.status, Message: msg}
}

// statusError builds the classified error for a 4xx answer.
func statusError(res httpResult) error {
	var body struct {
		Message              string `json:"message"`
		RequiresSubscription bool   `json:"requires_subscription"`
	}
	_ = json.Unmarshal(res.body, &body)

	e := &Error{
		StatusCode:           res.status,
		Message:              body.Message,
		RequiresSubscription: body.RequiresSubscription,
	}

	switch res.status {
	case http.StatusForbidden:
		// Kind refined per endpoint by classify.
		e.Kind = ErrFeatureDenied
	case http.StatusNotFound:
		e.Kind = ErrNotFound
	case http.StatusBadRequest:
		e.Kind = ErrValidation
	default:
		e.Kind = ErrServer
	}

	return e
}

// errorMessage pulls the backend message out of an error body, if any.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)
	return body.Message
}

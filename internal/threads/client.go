// path: internal/threads/client.go
// Package threads implements SocialClient (spec §4.D) against the Threads
// Graph API: OAuth code/long-lived/refresh token exchange, the two-step
// container-then-publish flow, insights, and recent-media listing for the
// import path. Token-at-rest encryption and per-account throttling are
// adapted from the teacher's social-platform adapter package; the registry
// and multi-provider dispatch that package also carried are not, since this
// deployment only ever talks to one platform.
package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
)

// DefaultBaseURL is the Threads Graph API root.
const DefaultBaseURL = "https://graph.threads.net"

// DefaultTimeout bounds every outbound call (spec §5).
const DefaultTimeout = 30 * time.Second

// maxPublishRetries bounds the container-then-publish retry loop on
// transient failures (spec §4.D: "Retries the publish step on specific
// transient errors up to a bounded number").
const maxPublishRetries = 2

// Config carries the OAuth app credentials for this deployment
// (internal/config.ThreadsConfig feeds this).
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	BaseURL      string
}

// Client is the SocialClient implementation for the Threads platform.
type Client struct {
	http    *http.Client
	cfg     Config
	limiter *RateLimiter
	logger  common.Logger
}

// New builds a Client. cfg.BaseURL defaults to DefaultBaseURL when empty.
func New(cfg Config, logger common.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		cfg:     cfg,
		limiter: NewRateLimiter(),
		logger:  logger,
	}
}

// ExchangeCode trades an OAuth authorization code for a short-lived token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"redirect_uri":  {c.cfg.RedirectURI},
		"grant_type":    {"authorization_code"},
		"code":          {code},
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.postForm(ctx, "/oauth/access_token", form, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// ExchangeForLongLived upgrades a short-lived token, as required
// immediately after ExchangeCode (spec §4.D).
func (c *Client) ExchangeForLongLived(ctx context.Context, shortToken string) (longToken string, expiresAt time.Time, err error) {
	q := url.Values{
		"grant_type":    {"th_exchange_token"},
		"client_secret": {c.cfg.ClientSecret},
		"access_token":  {shortToken},
	}
	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := c.get(ctx, "/access_token", q, &out); err != nil {
		return "", time.Time{}, err
	}
	return out.AccessToken, time.Now().Add(time.Duration(out.ExpiresIn) * time.Second), nil
}

// Refresh rolls a long-lived token forward. Callers must only invoke this
// when the token has at least a day of remaining life and was not refreshed
// within the last 24h (enforced by domain/social.Auth.IsRefreshEligible).
func (c *Client) Refresh(ctx context.Context, longToken string) (refreshed string, expiresAt time.Time, err error) {
	q := url.Values{
		"grant_type":   {"th_refresh_token"},
		"access_token": {longToken},
	}
	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := c.get(ctx, "/refresh_access_token", q, &out); err != nil {
		return "", time.Time{}, err
	}
	return out.AccessToken, time.Now().Add(time.Duration(out.ExpiresIn) * time.Second), nil
}

// PublishResult is the outcome of a successful Publish call.
type PublishResult struct {
	MediaID   string
	Permalink string
}

// Publish performs the two-step container-then-publish flow, retrying the
// publish step up to maxPublishRetries times on transient errors only; a
// non-rate-limit 4xx is never retried.
func (c *Client) Publish(ctx context.Context, accountID, token, text string) (*PublishResult, error) {
	if err := c.limiter.Wait(ctx, accountID); err != nil {
		return nil, newError(CodeNetworkError, "rate limiter wait interrupted", err)
	}

	containerID, err := c.createContainer(ctx, accountID, token, text)
	if err != nil {
		return nil, err
	}

	var mediaID string
	for attempt := 1; ; attempt++ {
		mediaID, err = c.publishContainer(ctx, accountID, token, containerID)
		if err == nil {
			break
		}
		if !isRetryable(err) || attempt > maxPublishRetries {
			return nil, err
		}
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	permalink, err := c.fetchPermalink(ctx, mediaID, token)
	if err != nil {
		return nil, err
	}
	return &PublishResult{MediaID: mediaID, Permalink: permalink}, nil
}

func (c *Client) createContainer(ctx context.Context, accountID, token, text string) (string, error) {
	form := url.Values{
		"media_type":   {"TEXT"},
		"text":         {text},
		"access_token": {token},
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/"+accountID+"/threads", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) publishContainer(ctx context.Context, accountID, token, containerID string) (string, error) {
	form := url.Values{
		"creation_id":  {containerID},
		"access_token": {token},
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/"+accountID+"/threads_publish", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) fetchPermalink(ctx context.Context, mediaID, token string) (string, error) {
	q := url.Values{
		"fields":       {"permalink"},
		"access_token": {token},
	}
	var out struct {
		Permalink string `json:"permalink"`
	}
	if err := c.get(ctx, "/"+mediaID, q, &out); err != nil {
		return "", err
	}
	return out.Permalink, nil
}

// Insights is the engagement snapshot for one posted media item.
type Insights struct {
	Views   int64
	Likes   int64
	Replies int64
	Reposts int64
}

// FetchInsights returns zeros for media outside the metric window rather
// than erroring (spec §4.D).
func (c *Client) FetchInsights(ctx context.Context, mediaID, token string) (*Insights, error) {
	q := url.Values{
		"metric":       {"views,likes,replies,reposts"},
		"access_token": {token},
	}
	var out struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int64 `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/"+mediaID+"/insights", q, &out); err != nil {
		var cerr *ClientError
		if asClientError(err, &cerr) && cerr.Code == CodePermissionError {
			return &Insights{}, nil
		}
		return nil, err
	}
	in := &Insights{}
	for _, metric := range out.Data {
		var total int64
		for _, v := range metric.Values {
			total += v.Value
		}
		switch metric.Name {
		case "views":
			in.Views = total
		case "likes":
			in.Likes = total
		case "replies":
			in.Replies = total
		case "reposts":
			in.Reposts = total
		}
	}
	return in, nil
}

// Profile identifies the Threads account a token belongs to.
type Profile struct {
	ID       string
	Username string
}

// FetchProfile resolves the account identity behind a freshly exchanged
// long-lived token, so the OAuth callback can register a ThreadsAccount
// without the caller having to already know its external ID.
func (c *Client) FetchProfile(ctx context.Context, token string) (*Profile, error) {
	q := url.Values{
		"fields":       {"id,username"},
		"access_token": {token},
	}
	var out struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := c.get(ctx, "/me", q, &out); err != nil {
		return nil, err
	}
	return &Profile{ID: out.ID, Username: out.Username}, nil
}

// Media is one item returned by ListRecentMedia.
type Media struct {
	ID        string
	Text      string
	Permalink string
	Timestamp time.Time
}

// ListRecentMedia pages through an account's recent posts for the import
// path (spec §4.D).
func (c *Client) ListRecentMedia(ctx context.Context, accountID, token string, limit int, after string) (media []Media, nextCursor string, err error) {
	q := url.Values{
		"fields":       {"id,text,permalink,timestamp"},
		"limit":        {strconv.Itoa(limit)},
		"access_token": {token},
	}
	if after != "" {
		q.Set("after", after)
	}
	var out struct {
		Data []struct {
			ID        string    `json:"id"`
			Text      string    `json:"text"`
			Permalink string    `json:"permalink"`
			Timestamp time.Time `json:"timestamp"`
		} `json:"data"`
		Paging struct {
			Cursors struct {
				After string `json:"after"`
			} `json:"cursors"`
		} `json:"paging"`
	}
	if err := c.get(ctx, "/"+accountID+"/threads", q, &out); err != nil {
		return nil, "", err
	}
	for _, d := range out.Data {
		media = append(media, Media{ID: d.ID, Text: d.Text, Permalink: d.Permalink, Timestamp: d.Timestamp})
	}
	return media, out.Paging.Cursors.After, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return newError(CodeUnknownError, "build request", err)
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path+"?"+form.Encode(), nil)
	if err != nil {
		return newError(CodeUnknownError, "build request", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return newError(CodeNetworkError, "threads call timed out", err)
		}
		return newError(CodeNetworkError, "threads call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newError(CodeUnknownError, "decode threads response", err)
	}
	return nil
}

type errorEnvelope struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		ErrorCode string `json:"error_subcode"`
	} `json:"error"`
}

// classifyResponse maps a non-200 Threads response onto ErrorCode (spec
// §4.D taxonomy).
func classifyResponse(resp *http.Response) error {
	var env errorEnvelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	msg := env.Error.Message
	if msg == "" {
		msg = fmt.Sprintf("threads returned %d", resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return newError(CodeRateLimit, msg, nil)
	case resp.StatusCode == http.StatusUnauthorized || env.Error.Type == "OAuthException":
		return newError(CodeTokenExpired, msg, nil)
	case resp.StatusCode == http.StatusForbidden:
		return newError(CodePermissionError, msg, nil)
	case resp.StatusCode >= 500:
		return newError(CodeNetworkError, msg, nil)
	default:
		return newError(CodeUnknownError, msg, nil)
	}
}

// isRetryable reports whether Publish's container-publish step should be
// retried: only network/rate-limit failures qualify, never a 4xx that
// signals a permanent problem with the request itself.
func isRetryable(err error) bool {
	var cerr *ClientError
	if !asClientError(err, &cerr) {
		return false
	}
	switch cerr.Code {
	case CodeNetworkError, CodeRateLimit:
		return true
	default:
		return false
	}
}

func asClientError(err error, target **ClientError) bool {
	cerr, ok := err.(*ClientError)
	if ok {
		*target = cerr
	}
	return ok
}

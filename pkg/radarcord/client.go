// Package radarcord is a client for the Radarcord bot-listing API.
//
// It reports a bot's guild and shard counts, fetches the bot's reviews and can
// repeat the stats post on an interval. Results can be mirrored to chat
// platforms through a Notifier.
//
// # Usage
//
//	conn := binding.NewDiscordgoConnection(session.State)
//	client, err := radarcord.NewClient(conn, os.Getenv("RADARCORD_TOKEN"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	notifier, _ := radarcord.NewNotifier(binding.NewDiscordgoMessenger(session))
//	logToChannel, _ := notifier.SendEmbed("11111111111", nil)
//
//	sched, err := client.AutopostWithCallback(ctx, logToChannel, 1, radarcord.Safe.Duration())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sched.Stop()
//
// The stats client never owns the bot connection. Posting before the
// connection is ready fails with ErrNotReady and sends nothing.
package radarcord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/sirupsen/logrus"
)

// ReviewsEndpoint selects the path reviews are fetched from
type ReviewsEndpoint int

const (
	// ReviewsFromBot reads reviews off the bot profile, GET /bot/{id}
	ReviewsFromBot ReviewsEndpoint = iota
	// ReviewsFromReviews uses the dedicated GET /bot/{id}/reviews path
	ReviewsFromReviews
)

func (e ReviewsEndpoint) path(botID string) string {
	if e == ReviewsFromReviews {
		return "/bot/" + botID + "/reviews"
	}
	return "/bot/" + botID
}

// Option configures a Client
type Option func(*Client)

// WithAPIRoot overrides the API base URL
func WithAPIRoot(root string) Option {
	return func(c *Client) {
		c.apiRoot = strings.TrimRight(root, "/")
	}
}

// WithHTTPClient replaces the HTTP client (default http.DefaultClient)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger for request diagnostics
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithReviewsEndpoint selects where GetReviews reads from
func WithReviewsEndpoint(e ReviewsEndpoint) Option {
	return func(c *Client) {
		c.reviewsEndpoint = e
	}
}

// Client posts stats and fetches reviews for one bot identity
type Client struct {
	conn            Connection
	authorization   string
	apiRoot         string
	httpClient      *http.Client
	reviewsEndpoint ReviewsEndpoint
	log             logrus.FieldLogger
}

// NewClient creates a stats client around an already connected bot.
// The token is sent verbatim in the Authorization header.
func NewClient(conn Connection, token string, opts ...Option) (*Client, error) {
	if conn == nil {
		return nil, &ArgumentError{Arg: "conn", Expected: "a radarcord.Connection", Got: "nil"}
	}

	c := &Client{
		conn:          conn,
		authorization: token,
		apiRoot:       constants.DefaultAPIRoot,
		httpClient:    http.DefaultClient,
		log:           logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connection returns the bot connection the client reads from
func (c *Client) Connection() Connection {
	return c.conn
}

// APIRoot returns the API base URL in use
func (c *Client) APIRoot() string {
	return c.apiRoot
}

// ensureReady returns the bot id, or the not-ready error when the connection
// has no ready event or no resolvable identity yet
func (c *Client) ensureReady() (string, error) {
	if !c.conn.IsReady() {
		return "", notReadyError()
	}
	botID := c.conn.BotID()
	if botID == "" {
		return "", notReadyError()
	}
	return botID, nil
}

// PostStats posts the current guild count and shardCount once.
// A shardCount below 1 is reported as 1.
func (c *Client) PostStats(ctx context.Context, shardCount int) (*StatsPostResult, error) {
	botID, err := c.ensureReady()
	if err != nil {
		return nil, err
	}
	if shardCount < 1 {
		shardCount = constants.DefaultShardCount
	}

	guilds := c.conn.GuildCount()
	payload, err := json.Marshal(map[string]int{
		"guilds": guilds,
		"shards": shardCount,
	})
	if err != nil {
		return nil, newError(err, "Request failed: %v", err)
	}

	url := fmt.Sprintf("%s/bot/%s/stats", c.apiRoot, botID)
	status, body, err := c.do(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"bot_id": botID,
		"guilds": guilds,
		"shards": shardCount,
		"status": status,
	}).Debug("stats-posted-to-radarcord")

	return &StatsPostResult{
		Message:    constants.StatsPostedMessage,
		StatusCode: status,
		Body:       parseStatsBody(body),
	}, nil
}

// PostWithCallback posts stats and hands the result to cb. Errors returned by
// cb are passed through untouched.
func (c *Client) PostWithCallback(ctx context.Context, cb Callback, shardCount int) error {
	result, err := c.PostStats(ctx, shardCount)
	if err != nil {
		return err
	}
	if cb != nil {
		return cb(ctx, result)
	}
	return nil
}

// AutopostStats posts once right away, then keeps posting every interval
// until the returned Scheduler is stopped or ctx is cancelled. If the first
// post fails nothing is scheduled. A zero interval means constants.DefaultInterval.
func (c *Client) AutopostStats(ctx context.Context, shardCount int, interval time.Duration, opts ...ScheduleOption) (*Scheduler, error) {
	return c.autopost(ctx, interval, func(ctx context.Context) error {
		_, err := c.PostStats(ctx, shardCount)
		return err
	}, opts)
}

// AutopostWithCallback is AutopostStats running PostWithCallback on each tick
func (c *Client) AutopostWithCallback(ctx context.Context, cb Callback, shardCount int, interval time.Duration, opts ...ScheduleOption) (*Scheduler, error) {
	return c.autopost(ctx, interval, func(ctx context.Context) error {
		return c.PostWithCallback(ctx, cb, shardCount)
	}, opts)
}

func (c *Client) autopost(ctx context.Context, interval time.Duration, task func(context.Context) error, opts []ScheduleOption) (*Scheduler, error) {
	if interval <= 0 {
		interval = constants.DefaultInterval
	}
	if err := task(ctx); err != nil {
		return nil, err
	}
	opts = append([]ScheduleOption{WithScheduleLogger(c.log)}, opts...)
	return Every(ctx, interval, task, opts...), nil
}

// GetReviews returns every review the bot has, possibly none
func (c *Client) GetReviews(ctx context.Context) ([]Review, error) {
	botID, err := c.ensureReady()
	if err != nil {
		return nil, err
	}

	url := c.apiRoot + c.reviewsEndpoint.path(botID)
	_, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	reviews, err := parseReviews(body)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"bot_id":  botID,
		"reviews": len(reviews),
	}).Debug("reviews-fetched-from-radarcord")
	return reviews, nil
}

// do sends one request and returns the status and raw body. Transport
// failures and non-2xx statuses both come back as *Error.
func (c *Client) do(ctx context.Context, method, url string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, newError(err, "Request failed: %v", err)
	}
	req.Header.Set("Authorization", c.authorization)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method": method,
			"url":    url,
			"error":  err,
		}).Error("radarcord-request-failed")
		return 0, nil, newError(err, "Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, newError(err, "Request failed: reading body: %v", err)
	}

	if !IsOK(resp.StatusCode) {
		c.log.WithFields(logrus.Fields{
			"method": method,
			"url":    url,
			"status": resp.StatusCode,
		}).Warn("radarcord-bad-status-code")
		return resp.StatusCode, body, badStatusError(resp.StatusCode, body)
	}

	return resp.StatusCode, body, nil
}

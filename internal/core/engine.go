package core

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/keepmind9/radarcord/internal/logger"
	"github.com/keepmind9/radarcord/pkg/binding"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/sirupsen/logrus"
)

// Gateway is an open Discord connection the engine posts for
type Gateway interface {
	Connection() radarcord.Connection
	Messenger() radarcord.Messenger
	Close() error
}

// GatewayOpener opens a Discord gateway with the given library and waits for Ready
type GatewayOpener func(ctx context.Context, library, token string) (Gateway, error)

// OpenGateway opens discordgo or arikawa
func OpenGateway(ctx context.Context, library, token string) (Gateway, error) {
	switch library {
	case LibraryDiscordgo:
		gw, err := binding.OpenDiscordgo(ctx, token)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case LibraryArikawa:
		gw, err := binding.OpenArikawa(ctx, token)
		if err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("unsupported discord library: %s", library)
	}
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithGatewayOpener replaces the Discord gateway opener
func WithGatewayOpener(open GatewayOpener) EngineOption {
	return func(e *Engine) {
		e.openGateway = open
	}
}

// WithTelegramFactory replaces how the Telegram messenger is created
func WithTelegramFactory(fn func(token string) (radarcord.Messenger, error)) EngineOption {
	return func(e *Engine) {
		e.newTelegram = fn
	}
}

// WithFeishuFactory replaces how the Feishu messenger is created
func WithFeishuFactory(fn func(appID, appSecret string) radarcord.Messenger) EngineOption {
	return func(e *Engine) {
		e.newFeishu = fn
	}
}

// WithHTTPClient sets the HTTP client used for Radarcord calls
func WithHTTPClient(hc *http.Client) EngineOption {
	return func(e *Engine) {
		e.httpClient = hc
	}
}

// Engine wires a Discord gateway, the Radarcord client and notification
// targets together from configuration
type Engine struct {
	config      *Config
	openGateway GatewayOpener
	newTelegram func(token string) (radarcord.Messenger, error)
	newFeishu   func(appID, appSecret string) radarcord.Messenger
	httpClient  *http.Client

	mu        sync.Mutex
	gateway   Gateway
	client    *radarcord.Client
	callback  radarcord.Callback
	scheduler *radarcord.Scheduler
}

// NewEngine creates a new Engine instance
func NewEngine(config *Config, opts ...EngineOption) *Engine {
	e := &Engine{
		config:      config,
		openGateway: OpenGateway,
		newTelegram: func(token string) (radarcord.Messenger, error) {
			m, err := binding.NewTelegramMessengerFromToken(token)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
		newFeishu: func(appID, appSecret string) radarcord.Messenger {
			return binding.NewFeishuMessenger(binding.NewLarkAPI(appID, appSecret))
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.httpClient == nil {
		e.httpClient = &http.Client{Timeout: config.RequestTimeout()}
	}
	return e
}

// Start opens the gateway and builds the client and notification callbacks
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gateway != nil {
		return nil
	}

	logger.WithFields(logrus.Fields{
		"library":  e.config.Discord.Library,
		"api_root": e.config.Radarcord.APIRoot,
		"targets":  e.config.NotifyTargets(),
	}).Info("starting-radarcord-engine")

	readyCtx, cancel := context.WithTimeout(ctx, e.config.ReadyTimeout())
	defer cancel()

	gw, err := e.openGateway(readyCtx, e.config.Discord.Library, e.config.Discord.Token)
	if err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}

	client, err := radarcord.NewClient(gw.Connection(), e.config.Radarcord.Token,
		radarcord.WithAPIRoot(e.config.Radarcord.APIRoot),
		radarcord.WithHTTPClient(e.httpClient),
		radarcord.WithLogger(logger.GetLogger()),
		radarcord.WithReviewsEndpoint(e.config.ReviewsEndpoint()),
	)
	if err != nil {
		gw.Close()
		return fmt.Errorf("failed to create radarcord client: %w", err)
	}

	callback, err := e.buildCallback(gw)
	if err != nil {
		gw.Close()
		return fmt.Errorf("failed to build notifications: %w", err)
	}

	e.gateway = gw
	e.client = client
	e.callback = callback
	return nil
}

// buildCallback chains a notification callback for every configured target
func (e *Engine) buildCallback(gw Gateway) (radarcord.Callback, error) {
	conn := gw.Connection()
	cbs := []radarcord.Callback{logResult(conn)}
	notify := e.config.Notify

	if notify.Channel.ID != "" || notify.Webhook.ID != "" {
		n, err := radarcord.NewNotifier(gw.Messenger(), radarcord.WithNotifierLogger(logger.GetLogger()))
		if err != nil {
			return nil, err
		}

		if notify.Channel.ID != "" {
			var cb radarcord.Callback
			if notify.Channel.Mode == ModeContent {
				cb, err = n.SendCustomContent(notify.Channel.ID, contentTemplate(notify.Channel.Content, conn))
			} else {
				cb, err = n.SendEmbed(notify.Channel.ID, nil)
			}
			if err != nil {
				return nil, err
			}
			cbs = append(cbs, cb)
		}

		if notify.Webhook.ID != "" {
			var builder radarcord.ContentBuilder
			if notify.Webhook.Content != "" {
				builder = contentTemplate(notify.Webhook.Content, conn)
			}
			cb, err := n.SendMessageWithWebhook(radarcord.WebhookData{
				ID:    notify.Webhook.ID,
				Token: notify.Webhook.Token,
			}, builder)
			if err != nil {
				return nil, err
			}
			cbs = append(cbs, cb)
		}
	}

	if notify.Telegram.Enabled {
		m, err := e.newTelegram(notify.Telegram.Token)
		if err != nil {
			return nil, err
		}
		cb, err := embedTo(m, notify.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		cbs = append(cbs, cb)
	}

	if notify.Feishu.Enabled {
		cb, err := embedTo(e.newFeishu(notify.Feishu.AppID, notify.Feishu.AppSecret), notify.Feishu.ChatID)
		if err != nil {
			return nil, err
		}
		cbs = append(cbs, cb)
	}

	return radarcord.Chain(cbs...), nil
}

func embedTo(m radarcord.Messenger, target string) (radarcord.Callback, error) {
	n, err := radarcord.NewNotifier(m, radarcord.WithNotifierLogger(logger.GetLogger()))
	if err != nil {
		return nil, err
	}
	return n.SendEmbed(target, nil)
}

// logResult logs each successful post with a human readable guild count
func logResult(conn radarcord.Connection) radarcord.Callback {
	return func(_ context.Context, result *radarcord.StatsPostResult) error {
		logger.WithFields(logrus.Fields{
			"status": result.StatusCode,
			"guilds": humanize.Comma(int64(conn.GuildCount())),
			"reply":  result.Body.Message,
		}).Info("radarcord-stats-updated")
		return nil
	}
}

// contentTemplate renders {status}, {message}, {body} and {guilds}
func contentTemplate(tmpl string, conn radarcord.Connection) radarcord.ContentBuilder {
	return func(result *radarcord.StatsPostResult) radarcord.Message {
		r := strings.NewReplacer(
			"{status}", strconv.Itoa(result.StatusCode),
			"{message}", result.Message,
			"{body}", result.Body.Message,
			"{guilds}", humanize.Comma(int64(conn.GuildCount())),
		)
		return radarcord.Message{Content: r.Replace(tmpl)}
	}
}

func (e *Engine) started() (*radarcord.Client, radarcord.Callback, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil, nil, fmt.Errorf("engine not started")
	}
	return e.client, e.callback, nil
}

// PostOnce posts stats once, running the notifications when notify is set
func (e *Engine) PostOnce(ctx context.Context, shardCount int, notify bool) (*radarcord.StatsPostResult, error) {
	client, callback, err := e.started()
	if err != nil {
		return nil, err
	}
	if shardCount <= 0 {
		shardCount = e.config.Radarcord.ShardCount
	}

	result, err := client.PostStats(ctx, shardCount)
	if err != nil {
		return nil, err
	}
	if notify && callback != nil {
		if err := callback(ctx, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// GuildCount returns the guild count of the open gateway
func (e *Engine) GuildCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gateway == nil {
		return 0
	}
	return e.gateway.Connection().GuildCount()
}

// Reviews fetches the bot's reviews
func (e *Engine) Reviews(ctx context.Context) ([]radarcord.Review, error) {
	client, _, err := e.started()
	if err != nil {
		return nil, err
	}
	return client.GetReviews(ctx)
}

// Run starts autoposting and blocks until ctx is cancelled
func (e *Engine) Run(ctx context.Context) error {
	client, callback, err := e.started()
	if err != nil {
		return err
	}

	interval := e.config.IntervalDuration()
	logger.WithFields(logrus.Fields{
		"interval": interval.String(),
		"overlap":  e.config.OverlapPolicy().String(),
		"shards":   e.config.Radarcord.ShardCount,
	}).Info("starting-autopost")

	scheduler, err := client.AutopostWithCallback(ctx, callback, e.config.Radarcord.ShardCount, interval,
		radarcord.WithOverlapPolicy(e.config.OverlapPolicy()),
	)
	if err != nil {
		return fmt.Errorf("initial stats post failed: %w", err)
	}

	e.mu.Lock()
	e.scheduler = scheduler
	e.mu.Unlock()

	select {
	case <-ctx.Done():
		logger.Info("autopost-shutting-down")
	case <-scheduler.Done():
	}
	scheduler.Stop()

	logger.WithFields(logrus.Fields{
		"job_id":  scheduler.ID(),
		"ticks":   humanize.Comma(scheduler.Ticks()),
		"skipped": scheduler.Skipped(),
	}).Info("autopost-stopped")
	return nil
}

// Stop stops autoposting and closes the gateway
func (e *Engine) Stop() error {
	logger.Info("stopping-radarcord-engine")

	e.mu.Lock()
	scheduler, gw := e.scheduler, e.gateway
	e.scheduler, e.gateway, e.client, e.callback = nil, nil, nil, nil
	e.mu.Unlock()

	if scheduler != nil {
		scheduler.Stop()
	}
	if gw != nil {
		if err := gw.Close(); err != nil {
			logger.WithField("error", err).Error("failed-to-close-gateway")
			return err
		}
	}

	logger.Info("engine-stopped")
	return nil
}

// Package server exposes the engines over HTTP: the REST API, the event stream,
// the connector endpoints and the embedded web remote.
package server

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Ducheved/sharpmote/auth"
	"github.com/Ducheved/sharpmote/history"
	"github.com/Ducheved/sharpmote/hub"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/media"
	"github.com/Ducheved/sharpmote/volume"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/net/netutil"
	"golang.org/x/time/rate"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 15 * time.Second
	idleTimeout       = 120 * time.Second
	maxBodyBytes      = 1 << 20
)

// Media is the part of the media engine the HTTP layer drives.
type Media interface {
	State() mo.Option[media.State]
	Play(ctx context.Context)
	Pause(ctx context.Context)
	Toggle(ctx context.Context)
	Next(ctx context.Context)
	Previous(ctx context.Context)
	Stop(ctx context.Context)
	AlbumArt(ctx context.Context) (media.Artwork, bool)
}

// Volume is the part of the volume engine the HTTP layer drives.
type Volume interface {
	Available() bool
	Snapshot(ctx context.Context) (volume.State, error)
	Set(ctx context.Context, level float64) error
	Step(ctx context.Context, delta float64) error
	ToggleMute(ctx context.Context) error
}

// Events hands out event stream subscriptions.
type Events interface {
	Subscribe(ctx context.Context) *hub.Subscriber
}

// Webhook consumes chat-bot updates pushed by the Bot API.
type Webhook interface {
	Secret() string
	HandleUpdate(ctx context.Context, body []byte) error
}

// History lists recently played tracks.
type History interface {
	Get() []history.Entry
}

// Config holds the listener settings.
type Config struct {
	Addr           string
	MaxConnections int
	SSELifetime    time.Duration
	MaxBodyBytes   int64

	APIRate      rate.Limit
	APIBurst     int
	WebhookRate  rate.Limit
	WebhookBurst int

	AllowedOrigins []string

	// APIKey resolves the expected key on every request so config reloads apply immediately.
	APIKey func() string
}

// LoadConfig reads the listener settings from viper.
func LoadConfig() Config {
	return Config{
		Addr:           net.JoinHostPort(viper.GetString(key.HTTPBind), strconv.Itoa(viper.GetInt(key.HTTPPort))),
		MaxConnections: viper.GetInt(key.HTTPMaxConnections),
		SSELifetime:    viper.GetDuration(key.HTTPSSELifetime),
		MaxBodyBytes:   maxBodyBytes,
		APIRate:        rate.Limit(viper.GetFloat64(key.APIRateLimit)),
		APIBurst:       viper.GetInt(key.APIRateBurst),
		WebhookRate:    rate.Limit(viper.GetFloat64(key.WebhookRateLimit)),
		WebhookBurst:   viper.GetInt(key.WebhookRateBurst),
		AllowedOrigins: viper.GetStringSlice(key.APIAllowedOrigins),
		APIKey:         auth.APIKey,
	}
}

// Option configures optional connectors.
type Option func(*Server)

// WithTelegram enables the webhook route.
func WithTelegram(w Webhook) Option {
	return func(s *Server) {
		s.telegram = w
	}
}

// WithYandex mounts the smart home protocol handler under /yandex/.
func WithYandex(h http.Handler) Option {
	return func(s *Server) {
		s.yandex = h
	}
}

// WithHistory enables GET /api/v1/history.
func WithHistory(h History) Option {
	return func(s *Server) {
		s.history = h
	}
}

// WithClock replaces the clock used for response timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// Server is the HTTP front of the application.
type Server struct {
	http *http.Server
	mux  *http.ServeMux
	cfg  Config

	media  Media
	volume Volume
	events Events

	telegram Webhook
	yandex   http.Handler
	history  History

	apiLimiter     *rate.Limiter
	webhookLimiter *rate.Limiter

	now func() time.Time
}

// New builds the server and registers every route.
func New(m Media, v Volume, events Events, cfg Config, opts ...Option) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = maxBodyBytes
	}
	if cfg.SSELifetime <= 0 {
		cfg.SSELifetime = 30 * time.Minute
	}
	if cfg.APIKey == nil {
		cfg.APIKey = func() string { return "" }
	}

	s := &Server{
		mux:            http.NewServeMux(),
		cfg:            cfg,
		media:          m,
		volume:         v,
		events:         events,
		apiLimiter:     rate.NewLimiter(cfg.APIRate, cfg.APIBurst),
		webhookLimiter: rate.NewLimiter(cfg.WebhookRate, cfg.WebhookBurst),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.routes()

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          stdlog.New(log.Writer(), "", 0),
	}

	return s
}

// Handler returns the routed mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return logRequests(recoverPanics(s.limitBody(s.cors(s.authorize(s.mux)))))
}

// Serve listens on the configured address until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done, then shuts down gracefully.
// Open event streams end with ctx because every request context derives from it.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	s.http.BaseContext = func(net.Listener) context.Context { return ctx }

	log.WithFields(log.Fields{"module": "http", "action": "listen", "addr": ln.Addr().String()}).Info("serving")

	served := make(chan error, 1)
	go func() {
		served <- s.http.Serve(ln)
	}()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		_ = s.http.Close()
		return fmt.Errorf("shutdown: %w", err)
	}

	<-served
	return nil
}

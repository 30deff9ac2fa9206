package clientbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-chess-client/internal/authapi"
	"github.com/park285/cheese-chess-client/internal/config"
	"github.com/park285/cheese-chess-client/internal/journal"
	"github.com/park285/cheese-chess-client/internal/msgcat"
	"github.com/park285/cheese-chess-client/internal/obslog"
	"github.com/park285/cheese-chess-client/internal/session"
	"github.com/park285/cheese-chess-client/pkg/sessiondto"
	"go.uber.org/zap"
)

// ErrNoJournal is returned by lookups that need the Redis journal when none is configured.
var ErrNoJournal = errors.New("REDIS_URL is not configured")

// Login is the token source used when no token is configured. *authapi.Client implements it.
type Login interface {
	Login(ctx context.Context, username, password string) (string, string, error)
}

type Deps struct {
	Config   *config.AppConfig
	Token    string
	Username string
	Catalog  *msgcat.Catalog
	// Journal is nil when neither REDIS_URL nor DATABASE_URL is set.
	Journal *journal.Recorder

	redis  *journal.RedisStore
	pg     *journal.PostgresStore
	logger *zap.Logger
}

type Option func(*options)

type options struct {
	login Login
}

// WithLogin replaces the REST login client.
func WithLogin(l Login) Option {
	return func(o *options) { o.login = l }
}

func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger, opts ...Option) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	d := &Deps{Config: cfg, Catalog: catalog, Token: cfg.Token, Username: cfg.Username, logger: logger}

	if cfg.NeedsLogin() {
		login := o.login
		if login == nil {
			login = authapi.NewClient(cfg.APIBaseURL)
		}
		lctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		token, user, err := login.Login(lctx, cfg.Username, cfg.Password)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
		d.Token = token
		if user != "" {
			d.Username = user
		}
		logger.Info("login_ok", zap.String("user", d.Username), zap.String("token", obslog.TokenPreview(token)))
	}

	// Journal stores are optional
	var stores journal.Multi
	if strings.TrimSpace(cfg.RedisURL) != "" {
		d.redis, err = journal.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init redis journal: %w", err)
		}
		stores = append(stores, d.redis)
	}
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		d.pg, err = journal.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = d.redis.Close()
			return nil, fmt.Errorf("init postgres journal: %w", err)
		}
		stores = append(stores, d.pg)
	}
	if len(stores) > 0 {
		d.Journal = journal.NewRecorder(stores, 64, logger)
	}
	return d, nil
}

// SessionConfig builds the engine configuration for one game.
func (d *Deps) SessionConfig(intent session.Intent, onView func(sessiondto.View), onNotice func(sessiondto.Notice)) session.Config {
	conn := d.Config.Conn()
	conn.Logger = d.logger
	sc := session.Config{
		Token:    d.Token,
		Intent:   intent,
		Conn:     conn,
		Catalog:  d.Catalog,
		Logger:   d.logger,
		OnView:   onView,
		OnNotice: onNotice,
	}
	if d.Journal != nil {
		sc.Journal = d.Journal
	}
	return sc
}

// LastRoom returns the room of the most recent unfinished session, or "" if none.
func (d *Deps) LastRoom(ctx context.Context) (string, error) {
	if d.redis == nil {
		return "", ErrNoJournal
	}
	l, err := d.redis.LastLive(ctx)
	if err != nil || l == nil {
		return "", err
	}
	return l.RoomID, nil
}

// Results lists up to n recently finished games, newest first.
func (d *Deps) Results(ctx context.Context, n int) ([]journal.Result, error) {
	if d.redis == nil {
		return nil, ErrNoJournal
	}
	return d.redis.Results(ctx, n)
}

// Close flushes the journal and closes its stores.
func (d *Deps) Close(ctx context.Context) error {
	var errs []error
	if d.Journal != nil {
		errs = append(errs, d.Journal.Close(ctx))
	}
	errs = append(errs, d.redis.Close(), d.pg.Close())
	return errors.Join(errs...)
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/blogservice"
	"github.com/sushihentaime/blogposts/internal/common"
	"github.com/sushihentaime/blogposts/internal/prefs"
	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/session"
	"github.com/sushihentaime/blogposts/internal/storage"
	"github.com/sushihentaime/blogposts/internal/userservice"
)

type application struct {
	config  *Config
	logger  *zap.Logger
	dsn     string
	db      *sql.DB
	models  *storage.Models
	prefs   *prefs.Store
	session *session.Manager
	out     io.Writer

	auth    *userservice.AuthService
	account *userservice.AccountService
	blogs   *blogservice.BlogService
	creator *blogservice.CreateBlogService
}

func newApplication(cfg *Config, out io.Writer) (*application, error) {
	// Initialize the logger
	logger, err := common.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, err
	}

	// Initialize the cache database
	dsn := common.DSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	db, err := common.NewDB(dsn, 10, 5, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("connect to the cache database: %w", err)
	}
	if err := common.MigrateUp(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate the cache database: %w", err)
	}

	store, err := prefs.Open(cfg.PrefsFile)
	if err != nil {
		db.Close()
		return nil, err
	}

	client, err := api.NewClient(api.Config{
		BaseURL:           cfg.APIBaseURL,
		RequestsPerSecond: cfg.APIRequestsPerSecond,
		Timeout:           cfg.NetworkTimeout,
	}, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	models := storage.NewModels(db)
	memo := common.NewCache(5*time.Minute, 10*time.Minute)
	sess := session.New(models.AuthTokens, session.DialProbe{Address: client.Host()}, client.Host(), memo, logger)

	userOpts := userservice.Options{Logger: logger, Timeout: cfg.NetworkTimeout}
	blogOpts := blogservice.Options{Logger: logger, Timeout: cfg.NetworkTimeout, PageSize: cfg.PageSize}

	// Initialize the services
	return &application{
		config:  cfg,
		logger:  logger,
		dsn:     dsn,
		db:      db,
		models:  models,
		prefs:   store,
		session: sess,
		out:     out,
		auth:    userservice.NewAuthService(client, models.AccountProperties, models.AuthTokens, store, sess, userOpts),
		account: userservice.NewAccountService(client, models.AccountProperties, sess, userOpts),
		blogs:   blogservice.NewBlogService(client, models.BlogPosts, sess, memo, blogOpts),
		creator: blogservice.NewCreateBlogService(client, models.BlogPosts, sess, blogOpts),
	}, nil
}

func (app *application) close() {
	app.auth.CancelActiveJobs()
	app.account.CancelActiveJobs()
	app.blogs.CancelActiveJobs()
	app.creator.CancelActiveJobs()
	app.session.Close()

	if err := common.CloseDB(app.db); err != nil {
		app.logger.Warn("close cache database", zap.Error(err))
	}
	_ = app.logger.Sync()
}

// restoreSession loads the last authenticated user from the cache into the
// session. It reports whether a token was found.
func (app *application) restoreSession(ctx context.Context) bool {
	vs, err := drain(app, app.auth.CheckPreviousAuthUser(ctx))
	if err != nil || vs == nil || vs.AuthToken == nil {
		return false
	}

	app.session.Login(vs.AuthToken)
	return true
}

// purgeCache drops the cached tables. They are recreated on the next start.
func (app *application) purgeCache() error {
	if err := common.MigrateDown(app.dsn); err != nil {
		return fmt.Errorf("purge the cache database: %w", err)
	}
	app.logger.Info("cache database purged", zap.String("database", app.config.DBName))
	return nil
}

func (app *application) requireToken(ctx context.Context) (*storage.AuthToken, error) {
	if !app.restoreSession(ctx) {
		return nil, errNotLoggedIn
	}
	return app.session.CachedToken(), nil
}

// drain consumes a stream up to its terminal state. Messages meant for the
// user are printed; a terminal error is returned.
func drain[V any](app *application, ch <-chan resource.DataState[V]) (*V, error) {
	var final resource.DataState[V]
	for state := range ch {
		if state.Loading.IsLoading {
			app.logger.Debug("loading", zap.Bool("cached", state.Value() != nil))
			continue
		}
		final = state
	}

	if final.Error != nil {
		return nil, responseError(final.Error.Response)
	}

	if msg, ok := final.Message(); ok {
		printResponse(app.out, msg)
	}
	return final.Value(), nil
}

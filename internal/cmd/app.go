package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/banssharp/banssharp/internal/admin"
	"github.com/banssharp/banssharp/internal/auth"
	"github.com/banssharp/banssharp/internal/ban"
	"github.com/banssharp/banssharp/internal/config"
	"github.com/banssharp/banssharp/internal/database"
	"github.com/banssharp/banssharp/internal/httphelper"
	"github.com/banssharp/banssharp/internal/metrics"
	"github.com/banssharp/banssharp/internal/servers"
	"github.com/banssharp/banssharp/internal/session"
	"github.com/banssharp/banssharp/internal/steam"
	"github.com/banssharp/banssharp/internal/user"
	"github.com/banssharp/banssharp/pkg/log"
)

var (
	BuildVersion = "master" //nolint:gochecknoglobals
	BuildCommit  = ""       //nolint:gochecknoglobals
	BuildDate    = ""       //nolint:gochecknoglobals
)

type BansSharp struct {
	config   config.Config
	database database.Database
	users    user.Store
	sessions session.Sessions
	auth     *auth.Auth
	servers  servers.Servers
	bans     ban.Bans
	admins   admin.Admins
	metrics  *metrics.Metrics
	sentry   *sentry.Client

	logCloser func()
}

func NewBansSharp() (*BansSharp, error) {
	conf, errConfig := config.Read(true)
	if errConfig != nil {
		slog.Error("Failed to read config", log.ErrAttr(errConfig))

		return nil, errConfig
	}

	return &BansSharp{config: conf}, nil
}

func (b *BansSharp) Init(ctx context.Context) error {
	conf := b.config

	b.setupSentry()

	b.logCloser = log.MustCreateLogger(ctx, conf.Log.File, log.Level(conf.Log.Level),
		conf.Log.SentryDSN != "", BuildVersion)

	slog.Info("Starting banssharp...",
		slog.String("version", BuildVersion),
		slog.String("commit", BuildCommit),
		slog.String("date", BuildDate))

	dbConn := database.New(conf.Database.DSN, conf.Database.AutoMigrate, conf.Database.LogQueries)
	if errConnect := dbConn.Connect(ctx); errConnect != nil {
		slog.Error("Cannot initialize database", log.ErrAttr(errConnect))

		return errConnect
	}

	b.database = dbConn

	b.users = user.NewRepository(b.database)
	b.sessions = session.NewSessions(session.NewRepository(b.database))
	b.auth = auth.NewAuth(conf.HTTP.CookieKey, conf.General.SiteName,
		conf.General.Mode == config.ReleaseMode, b.sessions, b.users)
	b.servers = servers.NewServers(servers.NewRepository(b.database))
	b.bans = ban.NewBans(ban.NewRepository(b.database))
	b.admins = admin.NewAdmins(admin.NewRepository(b.database))

	var registerer prometheus.Registerer
	if conf.HTTP.PrometheusEnabled {
		registerer = prometheus.DefaultRegisterer
	}

	b.metrics = metrics.New(registerer)

	return nil
}

func (b *BansSharp) setupSentry() {
	if b.config.Log.SentryDSN == "" {
		slog.Info("Sentry.io support is disabled. To enable, set logging.sentry_dsn.")

		return
	}

	sentryClient, err := log.NewSentryClient(b.config.Log.SentryDSN, b.config.Log.SentryTrace,
		b.config.Log.SentrySampleRate, BuildVersion, b.config.General.Mode.String())
	if err != nil {
		slog.Error("Failed to setup sentry client")
	} else {
		slog.Info("Sentry.io support is enabled.")
		b.sentry = sentryClient
	}
}

func (b *BansSharp) steamConfig() steam.Config {
	conf := b.config

	return steam.Config{
		APIKey:        conf.Steam.APIKey,
		LoginURL:      conf.Steam.LoginURL,
		RedirectURL:   conf.General.ExternalURL + conf.Steam.AuthPrefix + "/steam/callback",
		Prefix:        conf.Steam.AuthPrefix,
		SignupEnabled: conf.Steam.SignupEnabled,
		Client:        httphelper.NewClient(),
	}
}

func (b *BansSharp) Serve(rootCtx context.Context) error {
	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf := b.config

	router, errRouter := httphelper.CreateRouter(httphelper.RouterOpts{
		HTTPLogEnabled:    conf.HTTP.LogEnabled,
		LogLevel:          log.Level(conf.Log.Level),
		Mode:              conf.General.Mode.String(),
		SentryDSN:         conf.Log.SentryDSN,
		Version:           BuildVersion,
		PProfEnabled:      conf.HTTP.PProfEnabled,
		PrometheusEnabled: conf.HTTP.PrometheusEnabled,
		HTTPCORSEnabled:   conf.HTTP.CORSEnabled,
		CORSOrigins:       conf.HTTP.CORSOrigins,
	})
	if errRouter != nil {
		slog.Error("Could not setup router", log.ErrAttr(errRouter))

		return errRouter
	}

	steamConf := b.steamConfig()

	// Register all our handlers with router
	auth.NewAuthHandler(router, b.auth, b.sessions)
	steam.NewSteamHandler(router, steamConf, steam.NewVerifier(steamConf), steam.NewProfiles(steamConf),
		steam.NewResolver(steamConf, b.users), b.sessions, b.users, b.auth, b.metrics)
	servers.NewServersHandler(router, b.servers, b.auth)
	ban.NewBanHandler(router, b.bans, b.auth)
	admin.NewAdminHandler(router, b.admins, b.auth)

	httpServer := httphelper.NewServer(conf.HTTP.Addr(), router)

	go func() {
		<-ctx.Done()

		slog.Info("Shutting down HTTP service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		if errShutdown := httpServer.Shutdown(shutdownCtx); errShutdown != nil { //nolint:contextcheck
			slog.Error("Error shutting down http service", log.ErrAttr(errShutdown))
		}
	}()

	slog.Info("Starting HTTP server",
		slog.String("address", conf.HTTP.Addr()),
		slog.String("url", conf.General.ExternalURL))

	errServe := httpServer.ListenAndServe()
	if errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
		slog.Error("HTTP server returned error", log.ErrAttr(errServe))
	}

	<-ctx.Done()

	slog.Info("Exiting...")

	return nil
}

func (b *BansSharp) Close(_ context.Context) error {
	if b.database != nil {
		if errClose := b.database.Close(); errClose != nil {
			slog.Error("Failed to close database cleanly", log.ErrAttr(errClose))
		}
	}

	if b.sentry != nil {
		b.sentry.Flush(2 * time.Second)
	}

	if b.logCloser != nil {
		b.logCloser()
	}

	return nil
}

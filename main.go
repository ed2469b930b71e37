package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni/v2"
	"go.etcd.io/bbolt"

	"fknsrs.biz/p/rutube/handlers"
	"fknsrs.biz/p/rutube/internal/bboltstorage"
	"fknsrs.biz/p/rutube/internal/config"
	"fknsrs.biz/p/rutube/internal/configreader"
	"fknsrs.biz/p/rutube/internal/ctxclock"
	"fknsrs.biz/p/rutube/internal/ctxconfig"
	"fknsrs.biz/p/rutube/internal/ctxhttpclient"
	"fknsrs.biz/p/rutube/internal/ctxlogger"
	"fknsrs.biz/p/rutube/internal/ctxrutube"
	"fknsrs.biz/p/rutube/internal/httpcache"
	"fknsrs.biz/p/rutube/internal/logrusstackhook"
	"fknsrs.biz/p/rutube/internal/rutube"
)

var cfg = config.Default()

func init() {
	for _, configPath := range []string{"config.toml", "config.yaml", "config.yml"} {
		if st, err := os.Stat(configPath); err == nil && st != nil && !st.IsDir() {
			cfg.Config = configPath
		}
	}
}

func main() {
	if err := configreader.Read(os.Args[0], os.Args[1:], os.Environ(), &cfg); err != nil {
		panic(err)
	}

	logger := logrus.New()

	logger.SetLevel(cfg.LogLevel)
	if len(cfg.LogDebugLevels) > 0 {
		logger.AddHook(logrusstackhook.New(cfg.LogDebugLevels, nil))
	}

	logger.WithFields(logrus.Fields{
		"config.config":                    cfg.Config,
		"config.log_level":                 cfg.LogLevel,
		"config.log_debug_levels":          cfg.LogDebugLevels,
		"config.application_addr":          cfg.ApplicationAddr,
		"config.application_cache_path":    cfg.ApplicationCachePath,
		"config.application_cache_max_age": cfg.ApplicationCacheMaxAge,
		"config.api_base_url":              cfg.APIBaseURL,
		"config.user_agent":                cfg.UserAgent,
		"config.resolve_workers":           cfg.ResolveWorkers,
	}).Info("program starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = ctxconfig.WithConfig(ctx, cfg)
	ctx = ctxlogger.WithLogger(ctx, logger)
	ctx = ctxclock.WithClock(ctx, ctxclock.RealClock{})

	var transport http.RoundTripper = ctxhttpclient.NewUserAgentTransport(nil, cfg.UserAgent)

	if cfg.ApplicationCachePath != "" {
		cacheDB, err := bbolt.Open(cfg.ApplicationCachePath, 0600, &bbolt.Options{Timeout: time.Second * 5})
		if err != nil {
			logger.WithError(err).Fatal("could not open cache database")
		}
		defer cacheDB.Close()

		transport = httpcache.NewTransport(transport, bboltstorage.New(cacheDB), cfg.ApplicationCacheMaxAge)
	}

	ctx = ctxhttpclient.WithHTTPClient(ctx, &http.Client{
		Transport: transport,
		Timeout:   time.Minute,
	})

	ctx = ctxrutube.WithClient(ctx, rutube.New(cfg.APIBaseURL))

	if err := runApplicationServer(ctx, cfg.ApplicationAddr); err != nil {
		logger.WithError(err).Fatal("application server failed")
	}

	logger.Info("program finished")
}

func runApplicationServer(ctx context.Context, addr string) error {
	l := ctxlogger.GetLogger(ctx)

	l.WithFields(logrus.Fields{
		"args.addr": addr,
	}).Info("running application server")

	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.UseFunc(ctxlogger.Register(l))
	n.UseFunc(ctxlogger.Log())
	n.UseFunc(ctxclock.Register(ctxclock.GetClock(ctx)))
	n.UseFunc(ctxconfig.Register(ctxconfig.GetConfig(ctx)))
	n.UseFunc(ctxhttpclient.Register(ctxhttpclient.GetHTTPClient(ctx)))
	n.UseFunc(ctxrutube.Register(ctxrutube.GetClient(ctx)))
	n.UseHandler(handlers.NewRouter())

	s := &http.Server{
		Addr:              addr,
		Handler:           n,
		ReadHeaderTimeout: time.Second * 10,
	}

	errs := make(chan error, 1)

	go func() {
		errs <- s.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("runApplicationServer: %w", err)
	case <-ctx.Done():
	}

	l.Info("shutting down application server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("runApplicationServer: %w", err)
	}

	return nil
}

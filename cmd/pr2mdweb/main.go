package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/johnqtcg/pr2md/internal/cli"
	"github.com/johnqtcg/pr2md/internal/config"
	gh "github.com/johnqtcg/pr2md/internal/github"
	"github.com/johnqtcg/pr2md/internal/logging"
	"github.com/johnqtcg/pr2md/internal/parser"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.NewLoader().Load(os.Args[1:])
	if err != nil {
		logging.New(os.Stderr, logging.Options{}).Error("load config", "error", err)
		return cli.ResolveExitCode(err, false, 0)
	}
	logger := logging.New(os.Stderr, logging.Options{Verbose: cfg.Verbose, Quiet: cfg.Quiet})

	credential := cli.ResolveCredential(ctx, cfg, gh.NewExecRunner(), logger)
	fetcher, err := gh.NewFetcher(gh.Config{Token: credential.Token, Logger: logger})
	if err != nil {
		logger.Error("create fetcher", "error", err)
		return cli.ExitRuntime
	}

	tmpl, err := loadTemplate()
	if err != nil {
		logger.Error("load template", "error", err)
		return cli.ExitRuntime
	}

	server := &http.Server{
		Addr: resolveWebAddr(),
		Handler: newWebHandler(webDeps{
			parser:  parser.New(),
			fetcher: fetcher,
			tmpl:    tmpl,
			logger:  logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("pr2md web listening", "addr", server.Addr, "credential", credential.Source)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve http", "error", err)
			return cli.ExitRuntime
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown http server", "error", err)
			return cli.ExitRuntime
		}
	}
	return cli.ExitOK
}

func resolveWebAddr() string {
	if addr := strings.TrimSpace(os.Getenv("PR2MD_WEB_ADDR")); addr != "" {
		return addr
	}
	return ":8080"
}

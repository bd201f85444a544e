package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hypergopher/trailblog"
	"github.com/hypergopher/trailblog/web"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML or YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := trailblog.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error("failed to create data directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open post store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache, err := openCache(cfg)
	if err != nil {
		logger.Error("failed to open cache store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var search *trailblog.SearchIndex
	if !cfg.SearchOff {
		search, err = trailblog.OpenSearchIndex(cfg.DataDir)
		if err != nil {
			logger.Error("failed to open search index", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	blog, err := trailblog.NewBlog(trailblog.Options{
		Store:  store,
		Cache:  cache,
		Search: search,
		Logger: logger,
	})
	if err != nil {
		logger.Error("failed to create blog", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer blog.Close()

	pages, err := trailblog.LoadPages(cfg.PagesDir)
	if err != nil {
		logger.Warn("static pages unavailable", slog.String("error", err.Error()))
		pages = map[string]*trailblog.Page{}
	}

	var mailer trailblog.Mailer
	if cfg.SMTPHost != "" {
		mailer = trailblog.NewSMTPMailer(trailblog.SMTPOptions{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			To:       cfg.MailTo,
		})
	}

	server, err := web.NewServer(web.Options{
		Blog:   blog,
		Pages:  pages,
		Mailer: mailer,
		Auth:   web.NewAuth(cfg.SessionSecret, cfg.AdminUser, cfg.AdminPassword),
		Logger: logger,
	})
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", slog.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
	}
}

func openStore(cfg trailblog.Config) (trailblog.PostStore, error) {
	var store trailblog.PostStore
	switch cfg.StoreBackend {
	case "sqlite":
		s, err := trailblog.NewSQLiteStore(filepath.Join(cfg.DataDir, "trailblog.sqlite"))
		if err != nil {
			return nil, err
		}
		store = s
	default:
		store = trailblog.NewBoltStore(cfg.DataDir)
	}

	if err := store.Init(); err != nil {
		return nil, err
	}
	return store, nil
}

func openCache(cfg trailblog.Config) (trailblog.CacheStore, error) {
	if cfg.CacheBackend == "bolt" {
		return trailblog.NewBoltCacheStore(cfg.DataDir)
	}
	return trailblog.NewMemoryCacheStore(), nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediaflow/internal/auth"
	"mediaflow/internal/catalog"
	"mediaflow/internal/config"
	"mediaflow/internal/graphqlapi"
	"mediaflow/internal/httpapi"
	"mediaflow/pkg/logger"
	"mediaflow/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	manager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}
	gate := auth.NewGate(manager, log)

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	store := catalog.NewPostgresStore(db)
	owners := catalog.NewOwnerCache(rdb, 10*time.Minute, log)
	uploads := catalog.NewUploadLimiter(rdb, cfg.Uploads.MaxPerUser, cfg.Uploads.SlotTTL)

	contents := catalog.NewContentService(store.Contents(), owners, uploads, log)
	playlists := catalog.NewPlaylistService(store.Playlists(), log)
	categories := catalog.NewCategoryService(store.CategoriesRepo(), log)
	metadata := catalog.NewMetadataService(store.MetadataRepo(), contents, log)

	schema, err := graphqlapi.NewSchema(&graphqlapi.Resolver{
		Contents: contents,
		Ops:      graphqlapi.DefaultOperationTable(),
	})
	if err != nil {
		log.Error("schema init failed", "err", err)
		os.Exit(1)
	}

	if cfg.Auth.DevPublicContentCreate {
		log.Warn("anonymous content creation enabled; never run this in production")
	}

	r := httpapi.NewRouter(
		log,
		gate.Middleware(),
		httpapi.DefaultPolicyTable(cfg.Auth.DevPublicContentCreate),
		httpapi.Handlers{
			Auth:       manager,
			Contents:   contents,
			Playlists:  playlists,
			Categories: categories,
			Metadata:   metadata,
		},
		graphqlapi.Handler(schema),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

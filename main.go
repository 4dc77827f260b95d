package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ScriptMaster-server/config"
	"ScriptMaster-server/pkg/logger"
	"ScriptMaster-server/routers"
	"ScriptMaster-server/routers/api"
	"ScriptMaster-server/service"
	"ScriptMaster-server/store"
)

func main() {
	if err := config.InitConfig(); err != nil {
		panic(err)
	}
	cfg := config.AppConfig

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := store.InitDB(cfg)
	if err != nil {
		log.Fatal("database init failed", "error", err)
	}
	st, err := store.New(db, cfg.Cache.Size, log.With("component", "store"))
	if err != nil {
		log.Fatal("store init failed", "error", err)
	}
	if err := st.AutoMigrate(); err != nil {
		log.Fatal("auto migrate failed", "error", err)
	}
	log.Info("database initialized")

	queue := service.NewQueue(cfg, log.With("component", "queue"))
	defer queue.Close()
	log.Info("queue initialized", "redis", cfg.Redis.Addr)

	storage, err := service.NewMinioStorage(cfg, log.With("component", "minio"))
	if err != nil {
		log.Fatal("minio init failed", "error", err)
	}
	log.Info("minio initialized", "endpoint", cfg.MinIO.Endpoint)

	var polisher service.Polisher
	if cfg.AI.GeminiAPIKey != "" {
		gp, err := service.NewGeminiPolisher(context.Background(), cfg.AI.GeminiAPIKey, cfg.AI.Model, log.With("component", "polisher"))
		if err != nil {
			log.Warn("polisher disabled", "error", err)
		} else {
			polisher = gp
		}
	}

	processor := service.NewProcessor(st, storage, log.With("component", "processor"))
	worker := processor.StartProcessor(cfg)

	projects := service.NewProjectService(st, queue, polisher, log.With("component", "projects"))
	r := routers.InitRouter(cfg, api.NewHandler(projects, log), log)

	srv := &http.Server{Addr: cfg.Server.Port, Handler: r}
	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	worker.Shutdown()
}

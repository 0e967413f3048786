package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"HavenGo/config"
	"HavenGo/controllers"
	"HavenGo/middleware"
	"HavenGo/routes"
	"HavenGo/services"
	"HavenGo/store"
	"HavenGo/utils"
)

func main() {
	if err := config.InitLogger(); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer config.Logger.Sync()

	conf, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Local cache: the authoritative read path, opened before anything else.
	db, err := config.OpenCache(conf)
	if err != nil {
		log.Fatalf("failed to open local cache: %v", err)
	}
	local := store.NewLocalStore(db)
	defer local.Close()

	remote := store.NewRESTRemoteStore(
		conf.RemoteBaseURL,
		conf.RemoteToken,
		conf.RemoteUserID,
		time.Duration(conf.MirrorTimeoutSeconds)*time.Second,
	)

	// The monitor and the sync engine reference each other: the engine asks
	// the monitor whether to mirror, the monitor fires the engine's sweep on
	// the offline-to-online flip.
	var monitor *services.ConnectivityMonitor
	syncService := services.NewSyncService(
		local,
		remote,
		func() bool { return monitor != nil && monitor.Online() },
		time.Duration(conf.MirrorTimeoutSeconds)*time.Second,
		conf.SyncMaxAttempts,
	)
	monitor = services.NewConnectivityMonitor(
		nil,
		time.Duration(conf.ConnectivityPollSecs)*time.Second,
		func() { syncService.Sweep(context.Background()) },
	)
	monitor.Start()
	defer monitor.Close()

	// Live change feed is optional: without redis the cache still converges
	// through hydrating reads and sweeps.
	var feed *store.LiveFeed
	if conf.RedisHost != "" {
		redisClient, err := store.NewRedisClient(conf.GetRedisConnString(), conf.RedisPassword, conf.RedisDB)
		if err != nil {
			config.Logger.Warnw("live feed disabled", "error", err)
		} else {
			feed = store.NewLiveFeed(redisClient, conf.RemoteUserID)
			if err := feed.Start(context.Background(), syncService.HandleFeedEvent); err != nil {
				config.Logger.Warnw("live feed disabled", "error", err)
				feed = nil
			}
		}
	}

	// LLM client is optional too: without a key every reply comes from the
	// offline responder.
	var companionClient *services.CompanionClient
	if conf.LLMAPIKey != "" {
		companionClient, err = services.NewCompanionClient(conf.LLMAPIKey, conf.LLMAPIEndpoint, conf.LLMModel)
		if err != nil {
			log.Fatalf("failed to initialize companion client: %v", err)
		}
	}
	chatService := services.NewChatService(companionClient, services.NewOfflineResponder())
	chatController := controllers.NewChatController(chatService, syncService, local)

	jwtManager := utils.NewJWTManager(conf.JWTSecret)

	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	middleware.SetupMiddleware(r)
	routes.RegisterRoutes(r, jwtManager, chatController, syncService, local)

	srv := &http.Server{
		Addr:    ":" + conf.ServerPort,
		Handler: r,
	}

	go func() {
		config.Logger.Infow("server starting", "port", conf.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	config.Logger.Infow("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	if feed != nil {
		if err := feed.Close(); err != nil {
			config.Logger.Warnw("live feed close failed", "error", err)
		}
	}

	// Drain background work: post-stream persistence, in-flight generations,
	// and outstanding mirror writes.
	config.Logger.Infow("draining background tasks")
	chatController.Wait()
	chatService.Wait()
	syncService.Wait()
	config.Logger.Infow("shutdown complete")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Q872/base-sniper-monitor/monitor/database"
	"github.com/Q872/base-sniper-monitor/monitor/internal/alerts"
	"github.com/Q872/base-sniper-monitor/monitor/internal/bot"
	"github.com/Q872/base-sniper-monitor/monitor/internal/engine"
	"github.com/Q872/base-sniper-monitor/monitor/internal/handlers"
	"github.com/Q872/base-sniper-monitor/monitor/internal/ledger"
	"github.com/Q872/base-sniper-monitor/monitor/internal/risk"
	"github.com/Q872/base-sniper-monitor/monitor/internal/scheduler"
	"github.com/Q872/base-sniper-monitor/monitor/internal/services"
	"github.com/Q872/base-sniper-monitor/shared/config"
	"github.com/Q872/base-sniper-monitor/shared/env"
	"github.com/Q872/base-sniper-monitor/shared/logger"
	"github.com/Q872/base-sniper-monitor/shared/notifications"
)

func startHeartbeat(appLogger *logger.Logger) {
	go func() {
		ticker := time.NewTicker(8 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			appLogger.Info("Heartbeat: Program running...")
		}
	}()
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Panicf("FATAL PANIC RECOVERY: %v", r)
		}
	}()

	if err := env.LoadEnv(); err != nil {
		log.Fatalf("FATAL: Failed to load environment variables: %v", err)
	}
	log.Println("INFO: Environment variables loaded via shared/env.")

	cfg, errCfg := config.LoadConfig(env.ConfigPath)
	if errCfg != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", errCfg)
	}
	config.SetGlobalConfig(cfg)

	appLogger, err := logger.NewLogger(logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.App.Environment,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	appLogger.Info("Application logger initialized successfully.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Initializing Telegram notifications...")
	var telegram *notifications.Telegram
	botToken := cfg.Telegram.BotToken
	chatID := cfg.Telegram.ChatID
	if botToken == "" {
		botToken = env.TelegramBotToken
	}
	if chatID == 0 {
		chatID = env.TelegramChatID
	}
	if botToken != "" && chatID != 0 {
		telegram, err = notifications.NewTelegram(botToken, chatID)
		if err != nil {
			appLogger.Warn("Failed to initialize Telegram Bot, proceeding without Telegram features", zap.Error(err))
			telegram = nil
		} else {
			appLogger.AttachAlertSink(telegram.SendRaw)
			appLogger.Info("Telegram notifications initialized.")
		}
	} else {
		appLogger.Warn("Telegram bot token or chat ID not configured. Alerts disabled.")
	}

	var persister ledger.Persister
	dsn := env.DatabaseDSN()
	if dsn == "" {
		appLogger.Warn("No database configured. Ledger will not survive restarts.")
	} else {
		appLogger.Info("Connecting to database...")
		db, errDb := database.ConnectToDatabase(dsn)
		if errDb != nil {
			appLogger.Warn("Database connection failed. Ledger will run in-memory.", zap.Error(errDb))
		} else if errMig := database.MigrateDatabase(db, dsn); errMig != nil {
			appLogger.Warn("Database migrations failed. Ledger will run in-memory.", zap.Error(errMig))
		} else {
			appLogger.Info("Database ready.")
			persister = database.NewTokenStore(db)
		}
	}

	store := ledger.NewStore(ctx, cfg.Monitor.HistoryCap, persister, appLogger)

	dexScreener := services.NewDexScreenerClient(appLogger)
	honeypot := services.NewHoneypotClient(appLogger)
	basescan := services.NewBasescanClient(env.BasescanAPIKey, appLogger)
	enricher := services.NewBundleEnricher(honeypot, basescan, nil, nil, appLogger)

	cooldown := alerts.NewCooldown(cfg.CooldownWindow(), time.Duration(cfg.Alerts.RetentionHours)*time.Hour)

	var notifier engine.Notifier = engine.NopNotifier{}
	if telegram != nil {
		notifier = telegram
	}

	orch := engine.NewOrchestrator(dexScreener, enricher, notifier, store, cooldown, cfg.TrailingWindow(), engine.Config{
		FetchTimeout:  time.Duration(cfg.Monitor.FetchTimeoutSeconds) * time.Second,
		EnrichTimeout: time.Duration(cfg.Monitor.EnrichTimeoutSeconds) * time.Second,
		MinLiquidity:  cfg.Monitor.MinLiquidityUSD,
		Bands:         risk.Bands{LowMax: cfg.Risk.LowMax, MediumMax: cfg.Risk.MediumMax},
		Profile:       risk.ProfileByName(cfg.Risk.Profile),
	}, appLogger)

	appLogger.Info("Setting up web server...")
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	handlers.RegisterRoutes(router, appLogger)
	handlers.RegisterAPIRoutes(router, appLogger, store, orch)
	appLogger.Info("Web server and API routes registered.")

	go func() {
		serverAddr := ":" + cfg.App.Port
		appLogger.Info("Starting web server", zap.String("address", serverAddr))
		if err := router.Run(serverAddr); err != nil {
			appLogger.Fatal("Could not start web server.", zap.Error(err))
		}
	}()

	if err := bot.InitializeBot(appLogger, telegram, store, orch); err != nil {
		appLogger.Warn("Telegram command listener not started", zap.Error(err))
	} else {
		go bot.StartListening(ctx)
	}

	sched := scheduler.NewScheduler(ctx, orch, cooldown, appLogger)
	if err := sched.RegisterAll(cfg.Monitor.PollCron); err != nil {
		appLogger.Fatal("Failed to register scheduled tasks", zap.Error(err))
	}
	sched.Start()

	if cfg.Monitor.RunOnStart {
		appLogger.Info("RUN_ON_START enabled, executing initial cycle...")
		go sched.RunCycleNow()
	}

	startHeartbeat(appLogger)
	appLogger.Info("Application startup complete. Waiting for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutdown signal received.")

	cancel()
	sched.Stop()
	appLogger.Info("Shutdown complete.")
}

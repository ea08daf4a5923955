package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/dhanadurga/backend/api/handler"
	"github.com/dhanadurga/backend/internal/clock"
	"github.com/dhanadurga/backend/internal/config"
	"github.com/dhanadurga/backend/internal/infrastructure/buffer"
	"github.com/dhanadurga/backend/internal/infrastructure/gemini"
	"github.com/dhanadurga/backend/internal/infrastructure/monitor"
	"github.com/dhanadurga/backend/internal/infrastructure/notify"
	pgInfra "github.com/dhanadurga/backend/internal/infrastructure/postgres"
	redisInfra "github.com/dhanadurga/backend/internal/infrastructure/redis"
	"github.com/dhanadurga/backend/internal/middleware"
	"github.com/dhanadurga/backend/internal/router"
	"github.com/dhanadurga/backend/internal/services"
	"github.com/dhanadurga/backend/internal/services/lifecycle"
	"github.com/dhanadurga/backend/pkg/httpcontext"
	"github.com/dhanadurga/backend/pkg/logger"
	"github.com/dhanadurga/backend/repository"
	"github.com/dhanadurga/backend/repository/postgres"
	redisRepo "github.com/dhanadurga/backend/repository/redis"
	activityUC "github.com/dhanadurga/backend/usecase/activity"
	assistantUC "github.com/dhanadurga/backend/usecase/assistant"
	authUC "github.com/dhanadurga/backend/usecase/auth"
	credentialUC "github.com/dhanadurga/backend/usecase/credential"
	habitUC "github.com/dhanadurga/backend/usecase/habit"
	noteUC "github.com/dhanadurga/backend/usecase/note"
	scheduleUC "github.com/dhanadurga/backend/usecase/schedule"
	statsUC "github.com/dhanadurga/backend/usecase/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	sysClock := clock.System{}

	docStore := postgres.NewDocumentStore(pool)
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.AccessTTL)
	alertLog := repository.NewAlertLog(docStore)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		docStore,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})
	bufferBridge := services.NewBufferBridge(bufferProcessor)

	mailer := notify.NewMailer(cfg.SMTP, zapLogger)
	whatsapp := notify.NewWhatsAppSender(cfg.Twilio, zapLogger)
	notifier := notify.NewDispatcher(mailer, whatsapp, zapLogger)

	cipher, err := credentialUC.NewCipher(cfg.Vault.EncryptionKey)
	if err != nil {
		zapLogger.Fatal("vault cipher init failed", zap.Error(err))
	}

	activityStore := activityUC.New(docStore, bufferBridge, sysClock, zapLogger)
	conflictEngine := scheduleUC.New(activityStore, zapLogger)
	statsAgg := statsUC.New(docStore, sysClock, zapLogger)
	vault := credentialUC.New(docStore, cipher, zapLogger)
	notes := noteUC.New(docStore, zapLogger)
	habits := habitUC.New(docStore, zapLogger)

	tokens := authUC.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.ResetTTL)
	authUseCase := authUC.New(userRepo, sessionRepo, tokens, notifier, sysClock, cfg.FrontendOrigin, zapLogger)

	geminiClient, err := gemini.NewClient(appCtx, cfg.Gemini, zapLogger)
	if err != nil {
		zapLogger.Warn("gemini init failed, assistant runs offline", zap.Error(err))
	}
	var interp assistantUC.Interpreter
	if geminiClient != nil {
		interp = geminiClient
	}
	assistant := assistantUC.New(
		activityStore,
		conflictEngine,
		vault,
		notifier,
		interp,
		sysClock,
		cfg.Twilio.DefaultTarget,
		zapLogger,
	)

	reminders := services.NewReminderEngine(
		activityStore,
		userRepo,
		alertLog,
		notifier,
		sysClock,
		cfg.Scheduler,
		zapLogger,
	)
	reminders.Start()
	manager.Register("reminder_engine", func(ctx context.Context) error {
		reminders.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:       apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.AccessTTL),
		Activity:   apiHandler.NewActivityHandler(activityStore, ctxAdapter, zapLogger),
		Schedule:   apiHandler.NewScheduleHandler(conflictEngine, ctxAdapter, zapLogger, cfg.Scheduler.WorkdayStart, cfg.Scheduler.WorkdayEnd),
		Note:       apiHandler.NewNoteHandler(notes, ctxAdapter, zapLogger),
		Habit:      apiHandler.NewHabitHandler(habits, ctxAdapter, zapLogger),
		Credential: apiHandler.NewCredentialHandler(vault, ctxAdapter, zapLogger),
		Stats:      apiHandler.NewStatsHandler(statsAgg, ctxAdapter, zapLogger),
		Assistant:  apiHandler.NewAssistantHandler(assistant, ctxAdapter, zapLogger),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servicedesk/config"
	"servicedesk/cron"
	"servicedesk/database"
	establishmentRepo "servicedesk/database/repository/establishment"
	historyRepo "servicedesk/database/repository/history"
	orderRepo "servicedesk/database/repository/serviceorder"
	titleRepo "servicedesk/database/repository/title"
	userRepo "servicedesk/database/repository/user"
	"servicedesk/handlers"
	"servicedesk/middleware"
	"servicedesk/routes"
	"servicedesk/services/establishment"
	"servicedesk/services/identity"
	"servicedesk/services/notification"
	"servicedesk/services/report"
	"servicedesk/services/serviceorder"
	"servicedesk/services/storage"
	"servicedesk/services/title"
	"servicedesk/services/user"
	"servicedesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const version = "1.0.0"

// stores is the repository set selected by STORE_DRIVER.
type stores struct {
	users          userRepo.UserRepository
	establishments establishmentRepo.EstablishmentRepository
	orders         orderRepo.ServiceOrderRepository
	titles         titleRepo.TitleRepository
	history        historyRepo.HistoryRepository
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	checks := map[string]utils.HealthCheck{}

	// Firebase platform and document stores.
	var (
		platform *database.Platform
		st       stores
		idp      identity.Provider
	)
	if config.UseMemoryStore() {
		logger.Warn("STORE_DRIVER=memory: data is kept in process and lost on restart")
		st = stores{
			users:          userRepo.NewMemoryUserRepo(),
			establishments: establishmentRepo.NewMemoryEstablishmentRepo(),
			orders:         orderRepo.NewMemoryServiceOrderRepo(),
			titles:         titleRepo.NewMemoryTitleRepo(),
		}
		idp = identity.NewLocalProvider()
	} else {
		var err error
		platform, err = database.FirebaseInit(rootCtx,
			config.AppConfig.FirebaseCredentialsFile,
			config.AppConfig.FirebaseProjectID,
			config.AppConfig.FirebaseStorageBucket)
		if err != nil {
			logger.Fatal("main: failed to initialize Firebase", zap.Error(err))
		}
		defer platform.Close()
		st = stores{
			users:          userRepo.NewFirestoreUserRepo(platform.Firestore),
			establishments: establishmentRepo.NewFirestoreEstablishmentRepo(platform.Firestore),
			orders:         orderRepo.NewFirestoreServiceOrderRepo(platform.Firestore),
			titles:         titleRepo.NewFirestoreTitleRepo(platform.Firestore),
		}
		idp = identity.NewFirebaseProvider(platform.Auth)
		checks["firestore"] = platform.Ping
	}

	// Status history lives in MongoDB when configured.
	if config.AppConfig.DatabaseURL != "" {
		db, err := database.InitDB(config.AppConfig.DatabaseURL, config.AppConfig.MongoDatabase)
		if err != nil {
			logger.Fatal("main: failed to initialize MongoDB", zap.Error(err))
		}
		hist, err := historyRepo.NewMongoHistoryRepo(db)
		if err != nil {
			logger.Fatal("main: failed to prepare history collection", zap.Error(err))
		}
		st.history = hist
		checks["mongodb"] = database.PingMongo
	} else {
		st.history = historyRepo.NewMemoryHistoryRepo()
	}

	// Redis: auth cache and the notification queue.
	var (
		userCache utils.UserCache = utils.NoopUserCache{}
		queue     *asynq.Client
	)
	if config.AppConfig.RedisAddr != "" {
		if err := utils.InitAuthCache(); err != nil {
			logger.Fatal("main: failed to initialize auth cache", zap.Error(err))
		}
		userCache = utils.NewRedisUserCache(utils.AuthCacheClient)
		checks["redis"] = func(ctx context.Context) error { return utils.AuthCacheClient.Ping(ctx).Err() }
		queue = asynq.NewClient(cron.QueueRedisOpt())
		defer queue.Close()
	}

	// Blob storage.
	var avatars storage.AvatarStore
	var reports storage.ReportStore
	mem := storage.NewMemoryStore()
	avatars, reports = mem, mem
	if config.AppConfig.CloudinaryCloudName != "" {
		cld, err := storage.NewCloudinaryAvatarStore(
			config.AppConfig.CloudinaryCloudName,
			config.AppConfig.CloudinaryAPIKey,
			config.AppConfig.CloudinaryAPISecret)
		if err != nil {
			logger.Fatal("main: failed to initialize Cloudinary", zap.Error(err))
		}
		avatars = cld
	}
	if platform != nil && platform.Bucket != nil {
		reports = storage.NewGCSReportStore(platform.Bucket, config.AppConfig.FirebaseStorageBucket)
	}

	// Session tokens.
	sessions, err := utils.NewSessionTokens(config.AppConfig.JWTSecret,
		time.Duration(config.AppConfig.SessionTokenTTLHours)*time.Hour)
	if err != nil {
		logger.Fatal("main: session tokens unavailable", zap.Error(err))
	}

	// Notifications.
	dispatcher := &notification.Dispatcher{
		Users: st.users,
		WhatsApp: notification.NewWhatsAppClient(
			config.AppConfig.WhatsAppAPIURL,
			config.AppConfig.WhatsAppPhoneNumberID,
			config.AppConfig.WhatsAppToken),
		Logger: logger.Named("notification"),
	}
	if queue != nil {
		dispatcher.Queue = queue
	}
	if platform != nil {
		dispatcher.Push = platform.Messaging
	}
	var worker *asynq.Server
	if queue != nil {
		worker = cron.InitNotificationWorker(dispatcher)
	}

	// Services.
	userService := &user.DefaultUserService{
		Repo:           st.users,
		Establishments: st.establishments,
		Identity:       idp,
		Tokens:         sessions,
		Avatars:        avatars,
		Cache:          userCache,
	}
	if _, err := userService.EnsureAdmin(rootCtx,
		config.AppConfig.BootstrapAdminEmail, config.AppConfig.BootstrapAdminPassword); err != nil {
		logger.Error("main: failed to create bootstrap admin", zap.Error(err))
	}
	orderService := &serviceorder.DefaultServiceOrderService{
		Orders:         st.orders,
		Users:          st.users,
		Establishments: st.establishments,
		Titles:         st.titles,
		HistoryRepo:    st.history,
		Notifier:       dispatcher,
		Logger:         logger.Named("serviceorder"),
	}
	establishmentService := &establishment.DefaultEstablishmentService{Repo: st.establishments, Orders: st.orders}
	titleService := &title.DefaultTitleService{Repo: st.titles}
	reportService := &report.DefaultReportService{Orders: st.orders, Store: reports}

	// Background jobs.
	utils.StartHealthMonitor(rootCtx, time.Minute, checks)
	go cron.StartFeedbackReminderCron(rootCtx, orderService,
		time.Duration(config.AppConfig.FeedbackReminderDays)*24*time.Hour,
		time.Duration(config.AppConfig.FeedbackReminderIntervalMinutes)*time.Minute)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Auth: &middleware.Authenticator{
			Users:    st.users,
			Sessions: sessions,
			Identity: idp,
			Cache:    userCache,
		},
		AuthHandler:          handlers.NewAuthHandler(userService),
		UserHandler:          handlers.NewUserHandler(userService),
		EstablishmentHandler: handlers.NewEstablishmentHandler(establishmentService),
		TitleHandler:         handlers.NewTitleHandler(titleService),
		ServiceOrderHandler:  handlers.NewServiceOrderHandler(orderService),
		ReportHandler:        handlers.NewReportHandler(reportService),
		HealthHandler:        &handlers.HealthHandler{Version: version},
	}

	router := gin.New()
	router.Use(gin.Logger())
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stop()
	// Pending notifications are enqueued or sent before the worker stops.
	dispatcher.Wait()
	if worker != nil {
		worker.Shutdown()
	}
	database.CloseDB(ctx)

	logger.Sugar().Info("main: server stopped gracefully")
}

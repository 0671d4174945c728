// File: apptdesk/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"apptdesk/config"
	"apptdesk/cron"
	"apptdesk/database"
	appointmentRepo "apptdesk/database/repository/appointment"
	"apptdesk/handlers"
	"apptdesk/routes"
	"apptdesk/services/booking"
	"apptdesk/services/diagnostics"
	ai "apptdesk/services/intelligence"
	"apptdesk/services/speech"
	"apptdesk/services/tasks"
	"apptdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func main() {
	issueToken := flag.String("issue-staff-token", "", "print a staff bearer token for the given name and exit")
	flag.Parse()

	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if *issueToken != "" {
		token, err := utils.GenerateStaffToken(*issueToken, utils.StaffTokenTTL)
		if err != nil {
			logger.Fatal("main: failed to issue staff token", zap.Error(err))
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Scheduling configuration.
	loc, err := time.LoadLocation(config.AppConfig.Timezone)
	if err != nil {
		logger.Fatal("main: invalid TIMEZONE", zap.String("timezone", config.AppConfig.Timezone), zap.Error(err))
	}
	hours, err := booking.ParseOfficeHours(config.AppConfig.OfficeHours)
	if err != nil {
		logger.Fatal("main: invalid OFFICE_HOURS", zap.Error(err))
	}

	var checks []utils.HealthCheck
	repo, storeChecks, err := openAppointmentStore(ctx, loc, logger)
	if err != nil {
		logger.Fatal("main: failed to open appointment store", zap.Error(err))
	}
	checks = append(checks, storeChecks...)
	defer database.Close()

	scheduler := booking.NewScheduler(ctx, repo, booking.Config{
		Duration:    time.Duration(config.AppConfig.AppointmentDurationMinutes) * time.Minute,
		OfficeHours: hours,
		Location:    loc,
	}, logger.Named("booking"))

	// Diagnostics journal.
	journal, err := diagnostics.NewJournal(config.AppConfig.ErrorLogFile, logger.Named("journal"))
	if err != nil {
		logger.Fatal("main: failed to open diagnostics journal", zap.Error(err))
	}

	// Conversation sessions: Redis when configured, memory otherwise.
	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	var sessions ai.SessionStore = ai.NewMemorySessionStore(sessionTTL)
	if utils.RedisEnabled() {
		client, err := utils.InitSessionCache()
		if err != nil {
			logger.Warn("main: Redis unavailable, keeping sessions in memory", zap.Error(err))
		} else {
			sessions = ai.NewRedisSessionStore(client, sessionTTL)
			checks = append(checks, utils.RedisCheck("redis", client))
			defer client.Close()
		}
	}

	// Reminders.
	var reminders tasks.ReminderScheduler = tasks.NoopReminders{}
	var worker *asynq.Server
	if config.AppConfig.RemindersEnabled && utils.RedisEnabled() {
		asynqReminders := tasks.NewAsynqReminders(cron.QueueRedisOpt(),
			time.Duration(config.AppConfig.ReminderLeadHours)*time.Hour, logger.Named("reminders"))
		defer asynqReminders.Close()
		reminders = asynqReminders
		worker = cron.InitReminderWorker(logger.Named("worker"))
	}

	deps := handlers.Deps{
		Bookings:       scheduler,
		Journal:        journal,
		Reminders:      reminders,
		SpeechLanguage: config.AppConfig.SpeechLanguage,
		Logger:         logger.Named("http"),
	}

	// Language model.
	if config.AppConfig.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
		if err != nil {
			logger.Fatal("main: failed to initialize Gemini", zap.Error(err))
		}
		defer gemini.Close()
		deps.Assistant = ai.NewAssistant(ai.AssistantDeps{
			Bookings:  scheduler,
			LLM:       gemini,
			Sessions:  sessions,
			Recorder:  journal,
			Reminders: reminders,
			Logger:    logger.Named("assistant"),
		})
	} else {
		logger.Warn("main: GEMINI_API_KEY not set; chat and voice endpoints are disabled")
	}

	// Speech to text.
	transcriber, err := speech.NewGoogleTranscriber(ctx, config.AppConfig.GoogleServiceAccountFile)
	if err != nil {
		logger.Warn("main: speech client unavailable; voice endpoint is disabled", zap.Error(err))
	} else {
		defer transcriber.Close()
		deps.Transcriber = transcriber
	}

	utils.StartHealthMonitor(ctx, 30*time.Second, checks)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	routes.RegisterRoutes(router, handlers.NewHandlerBundle(deps), logger.Named("http"), config.AppConfig.MaxRequestsPerMin)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// openAppointmentStore picks the durable store named by STORE_BACKEND.
func openAppointmentStore(ctx context.Context, loc *time.Location, logger *zap.Logger) (appointmentRepo.AppointmentRepository, []utils.HealthCheck, error) {
	switch config.AppConfig.StoreBackend {
	case "", "file":
		repo, err := appointmentRepo.NewFileAppointmentRepo(config.AppConfig.BookingsFile, loc)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using file appointment store", zap.String("path", config.AppConfig.BookingsFile))
		return repo, nil, nil

	case "mongo":
		db, err := database.InitDB()
		if err != nil {
			return nil, nil, err
		}
		repo := appointmentRepo.NewMongoAppointmentRepo(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		logger.Info("Using MongoDB appointment store", zap.String("database", config.AppConfig.DatabaseName))
		check := utils.HealthCheck{Name: "mongo", Check: func(ctx context.Context) error {
			return database.MongoClient.Ping(ctx, readpref.Primary())
		}}
		return repo, []utils.HealthCheck{check}, nil

	case "postgres":
		pool, err := database.InitPostgres()
		if err != nil {
			return nil, nil, err
		}
		repo := appointmentRepo.NewPostgresAppointmentRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		logger.Info("Using Postgres appointment store")
		check := utils.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		}}
		return repo, []utils.HealthCheck{check}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", config.AppConfig.StoreBackend)
	}
}

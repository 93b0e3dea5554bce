package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catchUpAPI/handlers"
	"catchUpAPI/internal/cache"
	"catchUpAPI/internal/chain"
	"catchUpAPI/internal/config"
	"catchUpAPI/internal/email"
	"catchUpAPI/internal/graph"
	"catchUpAPI/internal/metrics"
	"catchUpAPI/internal/notification"
	"catchUpAPI/internal/queue"
	"catchUpAPI/internal/rotation"
	"catchUpAPI/internal/schedule"
	"catchUpAPI/internal/store/postgres"
	"catchUpAPI/middleware"
	"catchUpAPI/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := cfg.RequireAPI(); err != nil {
		log.Fatal(err)
	}

	clerk.SetKey(cfg.ClerkSecretKey)
	log.Println("Clerk initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbPool, err := postgres.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()
	log.Println("Successfully connected to Postgres")

	st := postgres.New(dbPool)
	engine := chain.New(cfg.MaxChainLength)
	selector := rotation.New(cfg.MaxChainLength)

	// Push delivery falls back to logging when FCM credentials are missing.
	var sender notification.PushSender = notification.LogSender{}
	fcmService, err := notification.NewFCMService(connectCtx, cfg.FCMCredentialsFile)
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		sender = fcmService
		log.Println("FCM Push Provider initialized successfully")
	}

	var notifier services.Notifier
	if cfg.RedisURL != "" {
		queueNotifier, err := queue.NewNotifier(cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to create notification queue:", err)
		}
		defer queueNotifier.Close()
		notifier = queueNotifier
		log.Println("Notifications are handed to the asynq queue")
	} else {
		dispatcher := services.NewNotificationDispatcher(notification.NewDeliverer(st, sender), cfg.NotificationWorkers)
		defer dispatcher.Stop()
		notifier = dispatcher
		log.Println("Notifications are delivered in-process")
	}

	var orderCache cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(connectCtx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		orderCache = redisCache
	}
	defer orderCache.Close()

	var mirror services.GraphMirror
	var graphSource schedule.GraphSource = st
	if cfg.HasNeo4j() {
		runner, err := graph.NewNeo4jRunner(connectCtx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
		if err != nil {
			log.Fatal("Failed to connect to Neo4j:", err)
		}
		defer runner.Close(context.Background())
		neoMirror := graph.NewMirror(runner)
		mirror = neoMirror
		graphSource = neoMirror
		log.Println("Friend graph mirrored to Neo4j")
	}

	var alerter services.Alerter
	if cfg.HasPostmark() {
		alerter = email.NewReportAlerter(email.New(cfg.PostmarkToken, cfg.ReportEmailFrom), cfg.ReportEmailTo)
	} else {
		log.Println("Warning: POSTMARK_TOKEN or REPORT_EMAIL_TO not set, report alerts are disabled")
	}

	metrics.Register()
	middleware.InitPrometheus()

	userHandler := handlers.NewUserHandler(services.NewUserService(st, engine, mirror))
	questionHandler := handlers.NewQuestionHandler(services.NewQuestionService(st, engine, selector, notifier))
	answerHandler := handlers.NewAnswerHandler(
		services.NewAnswerService(st, engine, selector, notifier),
		services.NewFeedService(st, engine, selector),
	)
	moderationHandler := handlers.NewModerationHandler(services.NewModerationService(st, engine, alerter))
	friendHandler := handlers.NewFriendHandler(services.NewFriendService(st, notifier, mirror))
	scheduleHandler := handlers.NewScheduleHandler(services.NewScheduleService(
		schedule.NewRunner(graphSource, orderCache, cfg.ScheduleAttempts),
	))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.CleanupVisitors(ctx)

	r := mux.NewRouter()
	r.Use(limiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "catchUp-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/questions/today", questionHandler.Today).Methods("GET")
	api.HandleFunc("/questions/current", questionHandler.Current).Methods("GET")
	api.HandleFunc("/question-order", scheduleHandler.Latest).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/users", userHandler.RegisterUser).Methods("POST")
	protected.HandleFunc("/users/lookup", userHandler.LookupByPhone).Methods("GET")
	protected.HandleFunc("/users/in-contacts", userHandler.InContacts).Methods("POST")
	protected.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET")
	protected.HandleFunc("/users/{id}/block", moderationHandler.BlockUser).Methods("POST")
	protected.HandleFunc("/anon-users/lookup", userHandler.LookupAnonByPhone).Methods("GET")
	protected.HandleFunc("/anon-users/appears-in", userHandler.AnonAppearsIn).Methods("GET")

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/push-token", userHandler.RegisterPushToken).Methods("POST")
	protected.HandleFunc("/user/push-token", userHandler.Logout).Methods("DELETE")
	protected.HandleFunc("/user/answers", userHandler.UserAnswers).Methods("GET")
	protected.HandleFunc("/user/appears-in", userHandler.AppearsIn).Methods("GET")

	protected.HandleFunc("/questions/batch", questionHandler.CreateBatch).Methods("POST")

	protected.HandleFunc("/answers", answerHandler.AnswerQuestion).Methods("POST")
	protected.HandleFunc("/answers/exists", answerHandler.AnswerExists).Methods("GET")
	protected.HandleFunc("/answers/today", answerHandler.AnswersOfTheDay).Methods("GET")
	protected.HandleFunc("/answers/{id}/chain", answerHandler.GetChain).Methods("GET")
	protected.HandleFunc("/answers/{id}/hide", moderationHandler.HideAnswer).Methods("POST")
	protected.HandleFunc("/answers/{id}/report", moderationHandler.ReportAnswer).Methods("POST")
	protected.HandleFunc("/feed", answerHandler.FriendFeed).Methods("GET")

	protected.HandleFunc("/friends", friendHandler.GetFriends).Methods("GET")
	protected.HandleFunc("/friend-requests", friendHandler.SendRequest).Methods("POST")
	protected.HandleFunc("/friend-requests/sent", friendHandler.ListSent).Methods("GET")
	protected.HandleFunc("/friend-requests/received", friendHandler.ListReceived).Methods("GET")
	protected.HandleFunc("/friend-requests/{id}/accept", friendHandler.AcceptRequest).Methods("POST")
	protected.HandleFunc("/friend-requests/{id}/reject", friendHandler.RejectRequest).Methods("POST")
	protected.HandleFunc("/friend-requests/{id}", friendHandler.CancelRequest).Methods("DELETE")

	protected.HandleFunc("/question-order", scheduleHandler.Run).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := ":" + cfg.Port
	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

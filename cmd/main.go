package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/motohubdev/motohub/internal/auth"
	"github.com/motohubdev/motohub/internal/db"
	"github.com/motohubdev/motohub/internal/handlers"
	"github.com/motohubdev/motohub/internal/middleware"
	"github.com/motohubdev/motohub/internal/models"
	"github.com/motohubdev/motohub/internal/notify"
	"github.com/motohubdev/motohub/internal/requests"
)

func setupLogging() {
	if os.Getenv("LOG_FORMAT") == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	setupLogging()

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	database := client.Database(db.DatabaseName())
	requestColl := &db.MongoRequestCollection{Collection: database.Collection("partRequests")}
	notificationColl := &db.MongoNotificationCollection{Collection: database.Collection("notifications")}
	partColl := &db.MongoPartCollection{Collection: database.Collection("parts")}
	reportColl := &db.MongoReportCollection{Collection: database.Collection("serviceReports")}
	userColl := &db.MongoUserCollection{Collection: database.Collection("users")}
	carColl := &db.MongoCarCollection{Collection: database.Collection("cars")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	// Live notification pushes are optional; without a broker the store
	// records alone drive the UI.
	var fanout *notify.Fanout
	if brokerURL := os.Getenv("MQTT_BROKER_URL"); brokerURL != "" {
		mqttClient, err := notify.ConnectMQTT(brokerURL, "motohub-api")
		if err != nil {
			log.WithError(err).Warn("MQTT broker unreachable, continuing without live pushes")
			fanout = notify.NewFanout(notificationColl, userColl, nil)
		} else {
			log.WithField("broker", brokerURL).Info("Connected to MQTT broker")
			fanout = notify.NewFanout(notificationColl, userColl, mqttClient)
		}
	} else {
		fanout = notify.NewFanout(notificationColl, userColl, nil)
	}

	composer := requests.NewComposer(requestColl, partColl)
	lifecycle := requests.NewService(requestColl, fanout)

	authHandler := handlers.NewAuthHandler(authService, userColl)
	requestHandler := handlers.NewRequestHandler(composer, lifecycle)
	notificationHandler := handlers.NewNotificationHandler(notificationColl, fanout)
	inventoryHandler := handlers.NewInventoryHandler(partColl)
	reportHandler := handlers.NewReportHandler(reportColl, requestColl)
	carHandler := handlers.NewCarHandler(carColl, lifecycle)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/profile", authHandler.GetProfile)

	mux.Handle("POST /api/requests",
		authMiddleware.RequirePermission("create_request")(http.HandlerFunc(requestHandler.Submit)))
	mux.Handle("GET /api/requests",
		authMiddleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(requestHandler.List)))
	mux.Handle("GET /api/requests/counts",
		authMiddleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(requestHandler.Counts)))
	mux.Handle("GET /api/requests/mine",
		authMiddleware.RequirePermission("view_own_requests")(http.HandlerFunc(requestHandler.Mine)))
	mux.Handle("POST /api/requests/{id}/approve",
		authMiddleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(requestHandler.Approve)))
	mux.Handle("POST /api/requests/{id}/reject",
		authMiddleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(requestHandler.Reject)))
	mux.Handle("POST /api/requests/{id}/fulfill",
		authMiddleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(requestHandler.Fulfill)))
	mux.Handle("POST /api/requests/{id}/follow-up",
		authMiddleware.RequirePermission("request_follow_up")(http.HandlerFunc(requestHandler.FollowUp)))

	mux.HandleFunc("GET /api/notifications", notificationHandler.List)
	mux.HandleFunc("GET /api/notifications/unread-count", notificationHandler.UnreadCount)
	mux.HandleFunc("POST /api/notifications/{id}/read", notificationHandler.MarkRead)

	mux.Handle("GET /api/parts",
		authMiddleware.RequirePermission("view_inventory")(http.HandlerFunc(inventoryHandler.List)))
	mux.Handle("GET /api/parts/low-stock",
		authMiddleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(inventoryHandler.LowStock)))
	mux.Handle("GET /api/parts/{id}",
		authMiddleware.RequirePermission("view_inventory")(http.HandlerFunc(inventoryHandler.Get)))
	mux.Handle("POST /api/parts",
		authMiddleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(inventoryHandler.Create)))
	mux.Handle("POST /api/parts/{id}/stock",
		authMiddleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(inventoryHandler.AdjustStock)))

	mux.Handle("POST /api/cars",
		authMiddleware.RequirePermission("register_car")(http.HandlerFunc(carHandler.Register)))
	mux.Handle("GET /api/cars",
		authMiddleware.RequirePermission("view_own_cars")(http.HandlerFunc(carHandler.Mine)))
	mux.Handle("GET /api/cars/{id}/requests",
		authMiddleware.RequirePermission("view_own_cars")(http.HandlerFunc(carHandler.Requests)))

	mux.Handle("POST /api/reports",
		authMiddleware.RequirePermission("create_report")(http.HandlerFunc(reportHandler.Create)))
	mux.Handle("GET /api/reports",
		authMiddleware.RequirePermission("view_service_history")(http.HandlerFunc(reportHandler.ListByCar)))
	mux.Handle("GET /api/reports/mine",
		authMiddleware.RequirePermission("create_report")(http.HandlerFunc(reportHandler.Mine)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	handler := rateLimiter.RateLimit(300, 60)(authMiddleware.Authenticate(mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/SantaVM/bank-rest/internal/config"
	"github.com/SantaVM/bank-rest/internal/handler"
	"github.com/SantaVM/bank-rest/internal/integrations/cbr"
	"github.com/SantaVM/bank-rest/internal/middleware"
	"github.com/SantaVM/bank-rest/internal/repository"
	"github.com/SantaVM/bank-rest/internal/service"
	"github.com/SantaVM/bank-rest/internal/utils"
	"github.com/SantaVM/bank-rest/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Card number codec with process-wide key material
	crypto, err := utils.NewCryptoCodec([]byte(cfg.EncryptionKey), []byte(cfg.EncryptionIV))
	if err != nil {
		logger.Fatalf("Failed to initialize crypto codec: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	notifier := email.NewSender(cfg, logger)
	svc := service.NewService(repo, crypto, notifier, logger, cfg)
	h := handler.NewHandler(svc, logger)
	cbrClient := cbr.NewCBRClient(cfg, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))

	// Public routes
	r.HandleFunc("/auth/sign-up", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")

	// CBR key rate endpoint
	r.HandleFunc("/key-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := cbrClient.GetKeyRate(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get key rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"key_rate": rate})
	}).Methods("GET")

	// Authenticated routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/users/me", h.Me).Methods("GET")
	authRouter.HandleFunc("/cards/my-cards", h.MyCards).Methods("GET")
	authRouter.HandleFunc("/cards/total-balance", h.TotalBalance).Methods("GET")
	authRouter.HandleFunc("/cards/block/{cardId}", h.BlockRequest).Methods("PATCH")
	authRouter.HandleFunc("/cards/transfer", h.Transfer).Methods("POST")

	// Admin routes
	adminRouter := authRouter.PathPrefix("/").Subrouter()
	adminRouter.Use(middleware.RequireAdmin)
	adminRouter.HandleFunc("/users/admin/list", h.ListUsers).Methods("GET")
	adminRouter.HandleFunc("/cards/admin/generate-card-number", h.GenerateCardNumber).Methods("GET")
	adminRouter.HandleFunc("/cards/admin/create", h.CreateCard).Methods("POST")
	adminRouter.HandleFunc("/cards/admin/list", h.ListCards).Methods("GET")
	adminRouter.HandleFunc("/cards/admin/change-status/{cardId}", h.ChangeStatus).Methods("PATCH")
	adminRouter.HandleFunc("/cards/admin/delete/{cardId}", h.DeleteCard).Methods("DELETE")

	// Daily card expiry sweep
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ExpirySweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		svc.ExpireOverdueCards(ctx)
	}); err != nil {
		logger.Fatalf("Failed to schedule expiry sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/13x54n/thamelbar/internal/config"
	"github.com/13x54n/thamelbar/internal/infrastructure/dynamo"
	"github.com/13x54n/thamelbar/internal/infrastructure/google"
	jwtinfra "github.com/13x54n/thamelbar/internal/infrastructure/jwt"
	"github.com/13x54n/thamelbar/internal/infrastructure/smtp"
	"github.com/13x54n/thamelbar/internal/infrastructure/sns"
	transporthttp "github.com/13x54n/thamelbar/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Session tokens are the backbone of every authenticated route; refuse to
	// start without signing material.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	// Mailer (falls back to a logging no-op when SMTP is unconfigured).
	mailer := smtp.NewMailer(cfg)

	// SNS push sender (optional — graceful fallback).
	var pushSender sns.PushSender
	if sender, err := sns.NewSender(cfg); err == nil {
		pushSender = sender
	} else {
		log.Printf("WARN: SNS push sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		Accounts:    dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts),
		Credentials: dynamo.NewCredentialRepo(dynamoClient, cfg.DynamoTables.Credentials),
		Bookings:    dynamo.NewBookingRepo(dynamoClient, cfg.DynamoTables.Bookings),
		Points:      dynamo.NewPointsRepo(dynamoClient, cfg.DynamoTables.PointTransactions, cfg.DynamoTables.Accounts),
		Mailer:      mailer,
		Push:        pushSender,
		JWTProvider: jwtProvider,
	}

	// Optional ID-token verification for federated logins.
	if cfg.GoogleClientID != "" {
		deps.Verifier = google.NewVerifier(cfg.GoogleClientID)
	} else {
		log.Println("WARN: GOOGLE_CLIENT_ID not set, federated logins trust posted subject ids")
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

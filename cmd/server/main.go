package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/deductfinder/backend/internal/model"
	"github.com/deductfinder/backend/internal/scan"
	"github.com/deductfinder/backend/internal/service"
	"github.com/deductfinder/backend/internal/store"
)

func main() {
	// .env is optional; real env vars win either way
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// NOTE: Default is 8111 to avoid conflicts with other projects (not 8080)
	port := os.Getenv("PORT")
	if port == "" {
		port = "8111"
	}

	jurisdiction := model.JurisdictionUS
	if raw := os.Getenv("JURISDICTION"); raw != "" {
		jurisdiction = model.Jurisdiction(strings.ToUpper(raw))
	}

	storeImpl := store.NewMemoryStore()
	scanner := &scan.StubScanner{}

	deductionService, err := service.NewDeductionService(storeImpl, scanner, jurisdiction)
	if err != nil {
		log.Fatalf("Failed to create deduction service: %v", err)
	}

	mux := http.NewServeMux()
	deductionService.RegisterRoutes(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// NOTE: Frontend runs on port 1234, not 3000
	allowedOrigins := []string{
		"http://localhost:1234",
		"http://127.0.0.1:1234",
	}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		allowedOrigins = strings.Split(raw, ",")
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
		},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	log.Printf("Starting server on port %s (jurisdiction %s)", port, jurisdiction)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

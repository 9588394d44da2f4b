package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/auth"
	"github.com/taskforge-dev/taskforge/internal/router"
	"github.com/taskforge-dev/taskforge/internal/scheduler"
	"github.com/taskforge-dev/taskforge/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Calendar access tokens are refreshed through the external provider
	// configured by CALENDAR_TOKEN_URL; unset means no calendar export.
	tokens := services.NewTokenCache(services.EnvTokenRefresher())
	services.Calendar = services.NewCalendarExporterFromEnv(tokens)

	reminders := scheduler.NewReminderScheduler()
	reminders.Start()
	defer reminders.Stop()

	r := router.NewRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

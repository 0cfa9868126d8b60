package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pillpall/internal/auth"
	"pillpall/internal/database"
	"pillpall/internal/handlers"
	"pillpall/internal/reminder"
	"pillpall/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// This is our main function - the entry point of our application
func main() {
	// Load .env in development; in production everything comes from the
	// environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Start the reminder worker
	ledger := reminder.NewGormLedger(database.GetDB())
	worker := reminder.NewWorker(ledger, services.NewSMSService())
	if err := worker.Start(); err != nil {
		log.Fatal("Failed to start reminder worker:", err)
	}

	// Let an in-flight tick finish before the process exits; an abandoned
	// dispatch just leaves its intake pending for the next run
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down, waiting for in-flight reminders...")
		worker.Stop()
		os.Exit(0)
	}()

	// Initialize Gin router
	router := gin.Default()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	// Allow the web frontend to call the API
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	// Auth routes (no auth required)
	router.POST("/auth/signup", handlers.Signup)
	router.POST("/auth/login", handlers.Login)

	// Protected routes (auth required)
	protected := router.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/me", handlers.GetCurrentUser)
		protected.PATCH("/me", handlers.UpdateCurrentUser)

		protected.GET("/medicines", handlers.GetMedicines)
		protected.POST("/medicines", handlers.CreateMedicine)
		protected.GET("/medicines/:id", handlers.GetMedicine)
		protected.PUT("/medicines/:id", handlers.UpdateMedicine)
		protected.DELETE("/medicines/:id", handlers.DeleteMedicine)

		protected.GET("/schedules", handlers.GetSchedules)
		protected.POST("/schedules", handlers.CreateSchedule)
		protected.PUT("/schedules/:id", handlers.UpdateSchedule)
		protected.DELETE("/schedules/:id", handlers.DeleteSchedule)

		protected.GET("/intakes", handlers.GetIntakes)
		protected.POST("/intakes", handlers.CreateIntake)
		protected.PATCH("/intakes/:id", handlers.UpdateIntake)
		protected.DELETE("/intakes/:id", handlers.DeleteIntake)

		protected.GET("/notifications", handlers.GetNotifications)
		protected.POST("/notifications", handlers.CreateNotification)
		protected.POST("/notifications/:id/read", handlers.MarkNotificationRead)
		protected.POST("/test-notification", handlers.CreateTestNotification)

		protected.GET("/caregivers", handlers.GetCaregivers)
		protected.POST("/caregivers", handlers.CreateCaregiver)
		protected.PUT("/caregivers/:id", handlers.UpdateCaregiver)
		protected.DELETE("/caregivers/:id", handlers.DeleteCaregiver)
	}

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Server starting on port %s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

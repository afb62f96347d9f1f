package main

import (
	"log"

	"github.com/joho/godotenv"

	"lightlab/internal/config"
	"lightlab/internal/container"
	"lightlab/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	hub := ui.NewSSEHub()
	c, err := container.New(appConfig, hub)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer c.Close()

	webApp, err := ui.NewApp(c.Service, hub)
	if err != nil {
		log.Fatalf("Failed to initialize UI: %v", err)
	}

	log.Printf("lightlab listening on :%s", appConfig.Server.Port)
	if err := webApp.Start(ui.Config{Port: appConfig.Server.Port}); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// cmd/server/main.go
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ramcd86/cosmic-games/internal/cache"
	"github.com/ramcd86/cosmic-games/internal/database"
	"github.com/ramcd86/cosmic-games/internal/game"
	"github.com/ramcd86/cosmic-games/internal/httpserver"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store := cache.New(ctx, os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), log)
	defer store.Close()

	if url := os.Getenv("DATABASE_URL"); url != "" {
		if err := database.Connect(ctx, url, log); err != nil {
			log.WithError(err).Warn("database unavailable, game history will not be persisted")
		} else {
			defer database.Close()
		}
	}

	manager := game.NewManager(store, log)
	if delay := os.Getenv("AI_TURN_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			manager.SetAIDelays(d, time.Second, 3*time.Second)
		}
	}

	server := httpserver.New(manager, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.WithField("port", port).Info("cosmic games server listening")
	if err := server.Start(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"serenity_back/meditation"
	"serenity_back/storage"
	"serenity_back/tts"
)

func mustLoadEnv() {
	_ = godotenv.Load()
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	if origins := strings.TrimSpace(os.Getenv("CORS_ALLOW_ORIGINS")); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cfg
}

func main() {
	mustLoadEnv()

	r := gin.Default()
	r.Use(cors.New(corsConfig()))

	store, err := storage.NewAudioStoreFromEnv()
	if err != nil {
		log.Printf("audio cache unavailable, synthesis will serve inline audio: %v", err)
		store = nil
	}

	ttsModule, err := tts.RegisterRoutes(r, store)
	if err != nil {
		log.Fatalf("register tts routes: %v", err)
	}

	if _, err := meditation.RegisterRoutes(r, ttsModule); err != nil {
		log.Fatalf("register meditation routes: %v", err)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("start server: %v", err)
	}
}

package main

import (
	"net/http"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	appConfig "tunebridge/config"
	"tunebridge/handlers"
	"tunebridge/itunes"
	"tunebridge/resolver"
	appSentry "tunebridge/sentry"
	"tunebridge/spotify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	appConfig.NewConfig()
	setupLogging()

	if appSentry.Enabled() {
		appSentry.Init()
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func setupLogging() {
	log.SetFormatter(&nested.Formatter{
		HideKeys:    true,
		FieldsOrder: []string{"component"},
	})
	if level, err := log.ParseLevel(appConfig.Config.Options.LogLevel); err == nil {
		log.SetLevel(level)
	}
}

func run() error {
	spotifyClient := spotify.NewClient(appConfig.Config.Spotify)
	trackResolver := resolver.New(itunes.New(), spotifyClient)
	manager := handlers.NewManager(trackResolver, spotifyClient)

	if !appConfig.Config.Spotify.HasUserCredentials() {
		log.Warn("Spotify credentials incomplete; top-track route will fail until SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and SPOTIFY_REFRESH_TOKEN are set")
	}

	router := gin.Default()
	if appSentry.Enabled() {
		router.Use(appSentry.GetSentryGin())
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := router.Group("/api")
	api.GET("/itunes/track", manager.ITunesTrack)
	api.GET("/spotify/track", manager.SpotifyTrack)
	api.GET("/spotify/top-track", manager.SpotifyTopTrack)
	api.GET("/spotify/callback", manager.SpotifyCallback)
	api.GET("/spotify/login", manager.SpotifyLogin)

	port := appConfig.Config.Options.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on :%s", port)
	return http.ListenAndServe(":"+port, router)
}

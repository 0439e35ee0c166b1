package config

import (
	"os"
)

type ConfigStruct struct {
	Spotify SpotifyConfig
	Options Options
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	RedirectURI  string
}

type Options struct {
	Port     string
	LogLevel string
}

// The redirect URI must match the one registered in the Spotify developer
// dashboard; override with SPOTIFY_REDIRECT_URI in production.
const defaultRedirectURI = "http://localhost:8080/api/spotify/callback"

func (s *SpotifyConfig) HasAppCredentials() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

func (s *SpotifyConfig) HasUserCredentials() bool {
	return s.HasAppCredentials() && s.RefreshToken != ""
}

var Config *ConfigStruct

func NewConfig() {
	config := &ConfigStruct{
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			RefreshToken: os.Getenv("SPOTIFY_REFRESH_TOKEN"),
			RedirectURI:  getRedirectURI(),
		},
		Options: Options{
			Port:     os.Getenv("PORT"),
			LogLevel: os.Getenv("LOG_LEVEL"),
		},
	}

	Config = config
}

func getRedirectURI() string {
	uri := os.Getenv("SPOTIFY_REDIRECT_URI")
	if uri == "" {
		return defaultRedirectURI
	}
	return uri
}

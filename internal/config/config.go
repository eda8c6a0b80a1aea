/**
 * @description
 * This package handles configuration management for the Dhukuti backend. It
 * uses the Viper library to read settings from environment variables or an
 * optional local .env file, providing one place where every tunable of the
 * service is declared and defaulted.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the backend.
// These values are loaded from environment variables.
type Config struct {
	ServerPort            string `mapstructure:"SERVER_PORT"`
	DatabaseURL           string `mapstructure:"DATABASE_URL"`
	RabbitMQURL           string `mapstructure:"RABBITMQ_URL"`
	EmailQueue            string `mapstructure:"EMAIL_QUEUE"`
	JWTSecret             string `mapstructure:"JWT_SECRET"`
	AccessTokenTTLMin     int    `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	RefreshTokenTTLHours  int    `mapstructure:"REFRESH_TOKEN_TTL_HOURS"`
	ActionTokenSecret     string `mapstructure:"ACTION_TOKEN_SECRET"`
	ActionTokenTTLHours   int    `mapstructure:"ACTION_TOKEN_TTL_HOURS"`
	PublicBaseURL         string `mapstructure:"PUBLIC_BASE_URL"`
	FrontendBaseURL       string `mapstructure:"FRONTEND_BASE_URL"`
	EmailVerifiedRedirect string `mapstructure:"EMAIL_VERIFIED_REDIRECT_URL"`
	SenderEmail           string `mapstructure:"SENDER_EMAIL"`
	SenderName            string `mapstructure:"SENDER_NAME"`
	AWSRegion             string `mapstructure:"AWS_REGION"`
	AWSAccessKeyID        string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey    string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
}

// LoadConfig reads configuration from environment variables, with an optional
// .env file in the given path. Environment variables win over file values.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("EMAIL_QUEUE", "mailer_service.email_requests")
	viper.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 15)
	viper.SetDefault("REFRESH_TOKEN_TTL_HOURS", 24)
	viper.SetDefault("ACTION_TOKEN_TTL_HOURS", 72)
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("SENDER_EMAIL", "no-reply@dhukuti.app")
	viper.SetDefault("SENDER_NAME", "Dhukuti")
	viper.SetDefault("AWS_REGION", "us-east-1")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("EMAIL_QUEUE")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("ACCESS_TOKEN_TTL_MINUTES")
	_ = viper.BindEnv("REFRESH_TOKEN_TTL_HOURS")
	_ = viper.BindEnv("ACTION_TOKEN_SECRET")
	_ = viper.BindEnv("ACTION_TOKEN_TTL_HOURS")
	_ = viper.BindEnv("PUBLIC_BASE_URL")
	_ = viper.BindEnv("FRONTEND_BASE_URL")
	_ = viper.BindEnv("EMAIL_VERIFIED_REDIRECT_URL")
	_ = viper.BindEnv("SENDER_EMAIL")
	_ = viper.BindEnv("SENDER_NAME")
	_ = viper.BindEnv("AWS_REGION")
	_ = viper.BindEnv("AWS_ACCESS_KEY_ID")
	_ = viper.BindEnv("AWS_SECRET_ACCESS_KEY")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	// If a platform-provided PORT is set (e.g., Railway/Render), prefer it.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	if config.AccessTokenTTLMin <= 0 {
		config.AccessTokenTTLMin = 15
	}
	if config.RefreshTokenTTLHours <= 0 {
		config.RefreshTokenTTLHours = 24
	}
	if config.ActionTokenTTLHours <= 0 {
		config.ActionTokenTTLHours = 72
	}

	// The action-token secret falls back to the JWT secret so a single
	// secret deployment still works.
	config.ActionTokenSecret = strings.TrimSpace(config.ActionTokenSecret)
	if config.ActionTokenSecret == "" {
		config.ActionTokenSecret = strings.TrimSpace(config.JWTSecret)
	}

	config.FrontendBaseURL = strings.TrimRight(strings.TrimSpace(config.FrontendBaseURL), "/")
	config.PublicBaseURL = strings.TrimRight(strings.TrimSpace(config.PublicBaseURL), "/")
	if config.EmailVerifiedRedirect == "" {
		config.EmailVerifiedRedirect = config.FrontendBaseURL + "/email-verified"
	}

	if strings.TrimSpace(config.JWTSecret) == "" {
		return config, errors.New("JWT_SECRET must be set")
	}

	return
}

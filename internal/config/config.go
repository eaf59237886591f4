/**
 * @description
 * This package handles configuration management for the Reckon API. It uses
 * the Viper library to read settings from environment variables or an
 * optional local .env file, assembling a single Config struct at process
 * start that is passed into each component's constructor.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration variables for the service.
type Config struct {
	ServerPort          string `mapstructure:"SERVER_PORT"`
	Environment         string `mapstructure:"ENVIRONMENT"`
	DatabaseURL         string `mapstructure:"DATABASE_URL"`
	RedisURL            string `mapstructure:"REDIS_URL"`
	RabbitMQURL         string `mapstructure:"RABBITMQ_URL"`
	JWTSecret           string `mapstructure:"JWT_SECRET"`
	MailgunAPIKey       string `mapstructure:"MAILGUN_API_KEY"`
	MailgunDomain       string `mapstructure:"MAILGUN_DOMAIN"`
	TranscriberURL      string `mapstructure:"TRANSCRIBER_URL"`
	OTPTTLSeconds       int    `mapstructure:"OTP_TTL_SECONDS"`
	OTPRateLimitPerHour int    `mapstructure:"OTP_RATE_LIMIT_PER_HOUR"`
	OTPSweepSchedule    string `mapstructure:"OTP_SWEEP_SCHEDULE"`
	CORSAllowedOrigins  string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// OTPTTL returns the verification code time-to-live as a duration.
func (c Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLSeconds) * time.Second
}

// IsDevelopment reports whether the service runs in development mode.
// Development mode is the only place the issued code may appear in an
// API response when email delivery fails.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "development")
}

// LoadConfig reads configuration from environment variables or an optional
// .env file in the working directory.
func LoadConfig() (config Config, err error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "production")
	viper.SetDefault("OTP_TTL_SECONDS", 600)
	viper.SetDefault("OTP_RATE_LIMIT_PER_HOUR", 5)
	viper.SetDefault("OTP_SWEEP_SCHEDULE", "@every 10m")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	// Bind env vars explicitly so they survive Unmarshal.
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("ENVIRONMENT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("MAILGUN_API_KEY")
	_ = viper.BindEnv("MAILGUN_DOMAIN")
	_ = viper.BindEnv("TRANSCRIBER_URL")
	_ = viper.BindEnv("OTP_TTL_SECONDS")
	_ = viper.BindEnv("OTP_RATE_LIMIT_PER_HOUR")
	_ = viper.BindEnv("OTP_SWEEP_SCHEDULE")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	// Platform-provided PORT (Railway/Render) wins over SERVER_PORT.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	if strings.TrimSpace(config.DatabaseURL) == "" {
		return config, fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(config.JWTSecret) == "" {
		return config, fmt.Errorf("JWT_SECRET is required")
	}

	if config.OTPTTLSeconds <= 0 {
		config.OTPTTLSeconds = 600
	}
	if config.OTPRateLimitPerHour <= 0 {
		config.OTPRateLimitPerHour = 5
	}

	return config, nil
}

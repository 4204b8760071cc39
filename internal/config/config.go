package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	EmailSender  string `mapstructure:"EMAIL_SENDER"`

	// BaselineRating is the skill rating assigned to a player the first time
	// they are seen on a server. It doubles as the Elo divisor.
	BaselineRating int `mapstructure:"BASELINE_RATING"`

	// RatingLambda weighs team mean rating against individual rating when
	// computing a player's effective strength. Must be in [0, 1].
	RatingLambda float64 `mapstructure:"RATING_LAMBDA"`

	// RatingStepSize controls the magnitude of each rating update.
	RatingStepSize int `mapstructure:"RATING_STEP_SIZE"`

	MaxServersPerUser int `mapstructure:"MAX_SERVERS_PER_USER"`

	// ServerOnlineCutoff is how recently a server must have sent an update to
	// be listed as online.
	ServerOnlineCutoff time.Duration `mapstructure:"SERVER_ONLINE_CUTOFF"`

	// EmailTokenRenewTimeout is the cooldown between verification token
	// renewals for the same user.
	EmailTokenRenewTimeout time.Duration `mapstructure:"EMAIL_TOKEN_RENEW_TIMEOUT"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EMAIL_SENDER", "Community Server <noreply@community-server.info>")
	viper.SetDefault("BASELINE_RATING", 800)
	viper.SetDefault("RATING_LAMBDA", 0.8)
	viper.SetDefault("RATING_STEP_SIZE", 64)
	viper.SetDefault("MAX_SERVERS_PER_USER", 5)
	viper.SetDefault("SERVER_ONLINE_CUTOFF", time.Minute)
	viper.SetDefault("EMAIL_TOKEN_RENEW_TIMEOUT", time.Minute)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}

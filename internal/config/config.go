package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string   `mapstructure:"PORT"`
	DatabasePath                  string   `mapstructure:"DATABASE_PATH"`
	JWTSecret                     string   `mapstructure:"JWT_SECRET"`
	FrontendURL                   string   `mapstructure:"FRONTEND_URL"`
	LoginPath                     string   `mapstructure:"LOGIN_PATH"`
	StaffEmails                   []string `mapstructure:"STAFF_EMAILS"`
	EnableCORS                    bool     `mapstructure:"ENABLE_CORS"`
	DiscordClientID               string   `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string   `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string   `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordGuildID                string   `mapstructure:"DISCORD_GUILD_ID"`
	DiscordBotToken               string   `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string   `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	SendGridAPIKey                string   `mapstructure:"SENDGRID_API_KEY"`
	MailFrom                      string   `mapstructure:"MAIL_FROM"`
	MailFromName                  string   `mapstructure:"MAIL_FROM_NAME"`
	ResetRatePerMinute            int      `mapstructure:"RESET_RATE_PER_MINUTE"`
	ResetRateBurst                int      `mapstructure:"RESET_RATE_BURST"`
}

func LoadConfig() *Config {
	// A missing .env is fine, the environment may be set by the host.
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "conference.db")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:4000")
	viper.SetDefault("LOGIN_PATH", "/login")
	viper.SetDefault("STAFF_EMAILS", []string{})
	viper.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	viper.SetDefault("MAIL_FROM", "no-reply@example.org")
	viper.SetDefault("MAIL_FROM_NAME", "Konferenz Anmeldung")
	viper.SetDefault("RESET_RATE_PER_MINUTE", 10)
	viper.SetDefault("RESET_RATE_BURST", 5)

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("FRONTEND_URL")
	viper.BindEnv("LOGIN_PATH")
	viper.BindEnv("STAFF_EMAILS")
	viper.BindEnv("ENABLE_CORS")
	viper.BindEnv("DISCORD_CLIENT_ID")
	viper.BindEnv("DISCORD_CLIENT_SECRET")
	viper.BindEnv("DISCORD_GUILD_ID")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("SENDGRID_API_KEY")
	viper.BindEnv("MAIL_FROM")
	viper.BindEnv("MAIL_FROM_NAME")
	viper.BindEnv("RESET_RATE_PER_MINUTE")
	viper.BindEnv("RESET_RATE_BURST")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	if config.JWTSecret == "" {
		log.Printf("JWT_SECRET is not set, sessions will not survive a restart")
		config.JWTSecret = "insecure-development-secret"
	}

	return &config
}

// IsStaffEmail reports whether email is listed in STAFF_EMAILS.
func (c *Config) IsStaffEmail(email string) bool {
	for _, e := range c.StaffEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

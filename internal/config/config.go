package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	DBUrl    string `mapstructure:"DB_URL"`
	RedisURL string `mapstructure:"REDIS_URL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	WhatsAppBaseURL string `mapstructure:"WHATSAPP_BASE_URL"`
	WhatsAppToken   string `mapstructure:"WHATSAPP_TOKEN"`
	WhatsAppPhoneID string `mapstructure:"WHATSAPP_PHONE_ID"`

	RazorpayKeyID         string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret     string `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayWebhookSecret string `mapstructure:"RAZORPAY_WEBHOOK_SECRET"`

	OutboxIntervalSeconds int `mapstructure:"OUTBOX_INTERVAL_SECONDS"`
}

func LoadConfig() Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com/v19.0")
	viper.SetDefault("OUTBOX_INTERVAL_SECONDS", 5)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No .env file found, using env variables only")
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		log.Fatal("config unmarshal error:", err)
	}

	if c.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	return c
}

// OutboxInterval returns how often the notification dispatcher polls for
// pending rows.
func (c Config) OutboxInterval() time.Duration {
	if c.OutboxIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.OutboxIntervalSeconds) * time.Second
}

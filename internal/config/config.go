package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// Hosted payment processor
	ProcessorBaseURL  string
	ProcessorAPIKey   string
	WebhookSecret     string
	CheckoutSuccessURL string
	CheckoutCancelURL  string

	// Pricing
	TaxRate                 float64
	ServiceFeeRate          float64
	PassThroughProcessorFee bool
	ProcessorPercentFee     float64
	ProcessorFixedFee       float64
	MinChargeAmount         float64

	// Checkout intents
	IntentTTL          time.Duration
	SweepInterval      time.Duration
	ReorderUseCurrentPrice bool
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),

		ProcessorBaseURL:   os.Getenv("PROCESSOR_BASE_URL"),
		ProcessorAPIKey:    os.Getenv("PROCESSOR_API_KEY"),
		WebhookSecret:      os.Getenv("PROCESSOR_WEBHOOK_SECRET"),
		CheckoutSuccessURL: os.Getenv("CHECKOUT_SUCCESS_URL"),
		CheckoutCancelURL:  os.Getenv("CHECKOUT_CANCEL_URL"),

		TaxRate:                 envFloat("TAX_RATE", 0.09),
		ServiceFeeRate:          envFloat("SERVICE_FEE_RATE", 0),
		PassThroughProcessorFee: envBool("PASS_THROUGH_PROCESSOR_FEE", false),
		ProcessorPercentFee:     envFloat("PROCESSOR_PERCENT_FEE", 0.029),
		ProcessorFixedFee:       envFloat("PROCESSOR_FIXED_FEE", 0.30),
		MinChargeAmount:         envFloat("MIN_CHARGE_AMOUNT", 0.50),

		IntentTTL:              envDuration("INTENT_TTL", 24*time.Hour),
		SweepInterval:          envDuration("INTENT_SWEEP_INTERVAL", 15*time.Minute),
		ReorderUseCurrentPrice: envBool("REORDER_USE_CURRENT_PRICE", false),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

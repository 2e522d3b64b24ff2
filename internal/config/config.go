package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port        string `envconfig:"PORT"         default:":8080"`
	LogLevel    string `envconfig:"LOG_LEVEL"    default:"info"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	RazorpayKeyID     string `envconfig:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `envconfig:"RAZORPAY_KEY_SECRET"`

	ShiprocketBaseURL  string `envconfig:"SHIPROCKET_BASE_URL" default:"https://apiv2.shiprocket.in/v1/external"`
	ShiprocketEmail    string `envconfig:"SHIPROCKET_EMAIL"`
	ShiprocketPassword string `envconfig:"SHIPROCKET_PASSWORD"`
	PickupLocation     string `envconfig:"SHIPROCKET_PICKUP_LOCATION" default:"Primary Warehouse"`
}

var (
	config Config
	once   sync.Once
)

// Load reads .env (if present) and then the process environment. An empty
// DATABASE_URL selects the in-memory stores.
func Load(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if err := envconfig.Process("", &config); err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: Port=%s, LogLevel=%s", config.Port, config.LogLevel)
		if config.DatabaseURL == "" {
			logger.Warn("DATABASE_URL not set, falling back to in-memory stores")
		}
		if config.RazorpayKeySecret == "" {
			logger.Warn("RAZORPAY_KEY_SECRET not set, payment verification will reject all callbacks")
		}
		if config.ShiprocketEmail == "" || config.ShiprocketPassword == "" {
			logger.Warn("Shiprocket credentials not set, shipments will be created in TEST_MODE")
		}
	})
	return &config
}

package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	APIBaseURL           string
	RequestTimeout       time.Duration
	AdminRegistrationKey string
	RazorpayKeyID        string
	StateDir             string
	CheckoutCallbackAddr string
}

func Load() Config {
	return Config{
		APIBaseURL:           getenv("API_BASE_URL", "http://localhost:5000/api"),
		RequestTimeout:       getenvDuration("REQUEST_TIMEOUT", 15*time.Second),
		AdminRegistrationKey: getenv("ADMIN_REGISTRATION_KEY", ""),
		RazorpayKeyID:        getenv("RAZORPAY_KEY_ID", ""),
		StateDir:             getenv("STATE_DIR", defaultStateDir()),
		CheckoutCallbackAddr: getenv("CHECKOUT_CALLBACK_ADDR", "127.0.0.1:0"),
	}
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".notesportal"
	}
	return filepath.Join(base, "notesportal")
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:5000/api" {
		t.Fatalf("expected default API_BASE_URL, got %s", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("expected 15s default timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.CheckoutCallbackAddr != "127.0.0.1:0" {
		t.Fatalf("expected loopback callback addr, got %s", cfg.CheckoutCallbackAddr)
	}
	if cfg.StateDir == "" {
		t.Fatalf("expected non-empty state dir")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://notes.example.com/api")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("ADMIN_REGISTRATION_KEY", "portal-admin-key")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("STATE_DIR", "/tmp/notesportal-test")
	t.Setenv("CHECKOUT_CALLBACK_ADDR", "127.0.0.1:18123")

	cfg := Load()
	if cfg.APIBaseURL != "https://notes.example.com/api" {
		t.Fatalf("expected API_BASE_URL override, got %s", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("expected REQUEST_TIMEOUT 3s, got %s", cfg.RequestTimeout)
	}
	if cfg.AdminRegistrationKey != "portal-admin-key" {
		t.Fatalf("expected ADMIN_REGISTRATION_KEY override, got %s", cfg.AdminRegistrationKey)
	}
	if cfg.RazorpayKeyID != "rzp_test_key" {
		t.Fatalf("expected RAZORPAY_KEY_ID override, got %s", cfg.RazorpayKeyID)
	}
	if cfg.StateDir != "/tmp/notesportal-test" {
		t.Fatalf("expected STATE_DIR override, got %s", cfg.StateDir)
	}
	if cfg.CheckoutCallbackAddr != "127.0.0.1:18123" {
		t.Fatalf("expected CHECKOUT_CALLBACK_ADDR override, got %s", cfg.CheckoutCallbackAddr)
	}
}

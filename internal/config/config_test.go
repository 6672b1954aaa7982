package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.SendTimeout != 15*time.Second {
		t.Errorf("SendTimeout = %v", cfg.SendTimeout)
	}
	if cfg.NoTelephony {
		t.Error("NoTelephony should default to false")
	}
	if cfg.RateLimit != 100 || cfg.RateWindow != time.Minute {
		t.Errorf("rate limit defaults wrong: %d/%v", cfg.RateLimit, cfg.RateWindow)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("BRIDGE_URL", "http://device:9090")
	t.Setenv("SMS_SEND_TIMEOUT", "30s")
	t.Setenv("BRIDGE_NO_TELEPHONY", "true")
	t.Setenv("RATE_LIMIT", "10")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9999" || cfg.BridgeURL != "http://device:9090" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.SendTimeout != 30*time.Second {
		t.Errorf("SendTimeout = %v", cfg.SendTimeout)
	}
	if !cfg.NoTelephony {
		t.Error("NoTelephony override not applied")
	}
	if cfg.RateLimit != 10 {
		t.Errorf("RateLimit = %d", cfg.RateLimit)
	}
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SMS_SEND_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT", "many")
	t.Setenv("BRIDGE_NO_TELEPHONY", "maybe")

	cfg := FromEnv()
	if cfg.SendTimeout != 15*time.Second || cfg.RateLimit != 100 || cfg.NoTelephony {
		t.Errorf("unparseable values must fall back to defaults: %+v", cfg)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Auth.AccessTTL != 30*time.Minute {
		t.Errorf("access ttl = %v, want 30m", c.Auth.AccessTTL)
	}
	if c.Auth.RefreshTTL != 7*24*time.Hour {
		t.Errorf("refresh ttl = %v, want 168h", c.Auth.RefreshTTL)
	}
	if c.Throttle.AnonPerMinute != 10 || c.Throttle.UserPerMinute != 30 {
		t.Errorf("throttle = %+v", c.Throttle)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("port: \"9000\"\nauth:\n  access_ttl: 5m\nthrottle:\n  anon_per_minute: 3\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("THROTTLE_ANON", "4")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != "9000" {
		t.Errorf("port = %q", c.Port)
	}
	if c.Auth.AccessTTL != 5*time.Minute {
		t.Errorf("access ttl = %v", c.Auth.AccessTTL)
	}
	if c.Throttle.AnonPerMinute != 4 {
		t.Errorf("env override lost: %d", c.Throttle.AnonPerMinute)
	}
	if c.Auth.RefreshTTL != 7*24*time.Hour {
		t.Errorf("default refresh ttl lost: %v", c.Auth.RefreshTTL)
	}
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

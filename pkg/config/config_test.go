package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsProd() {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
	if cfg.Upstream.Timeout != 15*time.Second {
		t.Fatalf("expected default upstream timeout, got %v", cfg.Upstream.Timeout)
	}
	if cfg.Uploads.MaxFiles != 10 || cfg.Uploads.MaxFileBytes != 5*1024*1024 {
		t.Fatalf("unexpected upload limits %+v", cfg.Uploads)
	}
	if cfg.Session.CookieName != "gm_session" {
		t.Fatalf("unexpected cookie name %q", cfg.Session.CookieName)
	}
	if got := cfg.Drafts.TTL; got != 2*time.Hour {
		t.Fatalf("expected draft ttl 2h, got %v", got)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvUploadMaxFiles, "4")
	t.Setenv(EnvStorageAssetVer, "build-42")
	t.Setenv(EnvCORSAllowedOrigin, "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Uploads.MaxFiles != 4 {
		t.Fatalf("expected max files override, got %d", cfg.Uploads.MaxFiles)
	}
	if cfg.Storage.AssetVersion != "build-42" {
		t.Fatalf("expected asset version override, got %q", cfg.Storage.AssetVersion)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsNonHTTPUpstream(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvUpstreamBaseURL, "ftp://api.example")

	if _, err := Load(); err == nil {
		t.Fatal("expected non-http upstream to be rejected")
	}
}

func TestLoad_SessionTTLMustExceedSkew(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvSessionTTL, "30s")

	if _, err := Load(); err == nil {
		t.Fatal("expected session ttl shorter than skew to be rejected")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvUpstreamBaseURL, "https://api.gearmarket.example/api")
	t.Setenv(EnvStoragePublicURL, "https://cdn.gearmarket.example")
}

package app

import (
	"testing"
	"time"

	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime/bus"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("ACTIVITY_BUS", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("RECOMMENDATION_CANDIDATE_LIMIT", "")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Port != 9090 {
		t.Fatalf("unexpected addr: %q %d", cfg.Addr, cfg.Port)
	}
	if cfg.StoreBackend != StoreGorm || cfg.ActivityBus != bus.KindMemory {
		t.Fatalf("unexpected backends: %q %q", cfg.StoreBackend, cfg.ActivityBus)
	}
	if cfg.RequestTimeout != 30*time.Second || cfg.JWTSecretKey == "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RecommendationScan != 0 {
		t.Fatalf("recommendations should scan the whole catalog by default, got %d", cfg.RecommendationScan)
	}
	if cfg.Consul.ServicePort != 9090 {
		t.Fatalf("consul port should follow PORT, got %d", cfg.Consul.ServicePort)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown store":        {"STORE_BACKEND": "cassandra"},
		"unknown bus":          {"ACTIVITY_BUS": "kafka"},
		"redis bus needs addr": {"ACTIVITY_BUS": "redis", "REDIS_ADDR": ""},
		"production secret":    {"APP_ENV": "production", "JWT_SECRET_KEY": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(logger.Nop()); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

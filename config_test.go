package tripauth

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestConfigValidate(t *testing.T) {
	valid := testConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for name, mutate := range map[string]func(*Config){
		"missing secret":        func(c *Config) { c.JWT.Secret = nil },
		"zero access ttl":       func(c *Config) { c.JWT.AccessTTL = 0 },
		"zero pending ttl":      func(c *Config) { c.Registration.PendingTTL = 0 },
		"negative cooldown":     func(c *Config) { c.Registration.ResendCooldown = -time.Minute },
		"cooldown exceeds ttl":  func(c *Config) { c.Registration.ResendCooldown = 25 * time.Hour },
		"zero refresh ttl":      func(c *Config) { c.Refresh.TTL = 0 },
		"negative cache budget": func(c *Config) { c.Cache.CallTimeout = -time.Second },
		"audit without buffer":  func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 },
	} {
		cfg := testConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestDefaultConfigWindows(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Registration.PendingTTL != 24*time.Hour {
		t.Fatalf("pending TTL default changed: %v", cfg.Registration.PendingTTL)
	}
	if cfg.Registration.ResendCooldown != 5*time.Minute {
		t.Fatalf("cool-down default changed: %v", cfg.Registration.ResendCooldown)
	}
	if cfg.Refresh.TTL != 7*24*time.Hour {
		t.Fatalf("refresh TTL default changed: %v", cfg.Refresh.TTL)
	}
}

func TestCloneConfigDetachesSecret(t *testing.T) {
	cfg := testConfig()
	clone := cloneConfig(cfg)

	cfg.JWT.Secret[0] ^= 0xFF
	if clone.JWT.Secret[0] == cfg.JWT.Secret[0] {
		t.Fatal("clone must own its secret bytes")
	}
}

func TestBuilderRequiresCollaborators(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := New().WithConfig(testConfig()).WithRedis(client).WithMailer(&captureMailer{}).WithLogger(logger).Build(); err == nil {
		t.Fatal("expected error without a user store")
	}
	if _, err := New().WithConfig(testConfig()).WithRedis(client).WithUserStore(newMockUserStore()).WithLogger(logger).Build(); err == nil {
		t.Fatal("expected error without a mailer")
	}
	if _, err := New().WithConfig(testConfig()).WithUserStore(newMockUserStore()).WithMailer(&captureMailer{}).WithLogger(logger).Build(); err == nil {
		t.Fatal("expected error without redis or cache")
	}

	b := New().WithConfig(testConfig()).WithRedis(client).WithUserStore(newMockUserStore()).WithMailer(&captureMailer{}).WithLogger(logger)
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("a builder must not be reusable")
	}
}

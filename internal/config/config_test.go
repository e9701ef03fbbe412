package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Env:            "prod",
		Port:           3000,
		StoreURI:       "mongodb://localhost:27017",
		JWTSecret:      "s3cret",
		JWTTTL:         time.Hour,
		AuthRateLimit:  10,
		AuthRateWindow: time.Minute,
		MaxBodyBytes:   1024,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:        "missing store uri",
			mutate:      func(c *Config) { c.StoreURI = "" },
			wantErr:     true,
			errorString: "MONGODB_URI is required",
		},
		{
			name:        "unknown scheme",
			mutate:      func(c *Config) { c.StoreURI = "mysql://localhost" },
			wantErr:     true,
			errorString: "MONGODB_URI must use",
		},
		{
			name:        "port out of range",
			mutate:      func(c *Config) { c.Port = 70000 },
			wantErr:     true,
			errorString: "invalid port 70000",
		},
		{
			name:        "missing secret",
			mutate:      func(c *Config) { c.JWTSecret = "" },
			wantErr:     true,
			errorString: "JWT_SECRET is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.errorString)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestStoreBackend(t *testing.T) {
	tests := map[string]string{
		"mongodb://localhost:27017":         "mongo",
		"mongodb+srv://cluster.example.net": "mongo",
		"postgres://u:p@localhost:5432/app": "postgres",
		"postgresql://u:p@localhost/app":    "postgres",
		"memory://":                         "memory",
		"redis://localhost":                 "",
	}

	for uri, want := range tests {
		if got := (Config{StoreURI: uri}).StoreBackend(); got != want {
			t.Errorf("%s: got %q want %q", uri, got, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("PORT", "")
	t.Setenv("MONGODB_URI", "memory://")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_TTL", "not-a-duration")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg := Load()

	if cfg.Port != 3000 {
		t.Fatalf("default port: got %d", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		t.Fatalf("dev should fall back to a development secret")
	}
	if cfg.JWTTTL != 7*24*time.Hour {
		t.Fatalf("bad JWT_TTL should fall back, got %s", cfg.JWTTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.GoogleEnabled() {
		t.Fatalf("google should be disabled without client id")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("dev defaults should validate: %v", err)
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("EXPENSEHUB_URL", "https://ledger.example/api/")
	t.Setenv("EXPENSEHUB_STATE", "/tmp/state.db")
	t.Setenv("EXPENSEHUB_TIMEOUT", "3s")

	cfg := LoadClient()

	if cfg.BaseURL != "https://ledger.example/api" {
		t.Fatalf("trailing slash should be trimmed: %q", cfg.BaseURL)
	}
	if cfg.StatePath != "/tmp/state.db" || cfg.Timeout != 3*time.Second {
		t.Fatalf("unexpected client config: %+v", cfg)
	}

	t.Setenv("EXPENSEHUB_TIMEOUT", "")
	if got := LoadClient().Timeout; got != 10*time.Second {
		t.Fatalf("default timeout: got %s", got)
	}
}

// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "pgx")
	t.Setenv("MILESTONES", "10,50,90")
	t.Setenv("PROPAGATION_TIMEOUT", "2s")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "pgx" {
		t.Errorf("expected pgx, got %q", cfg.DatabaseType)
	}
	if !slices.Equal(cfg.Milestones, []int{10, 50, 90}) {
		t.Errorf("unexpected milestones %v", cfg.Milestones)
	}
	if cfg.PropagationTimeout != 2*time.Second {
		t.Errorf("unexpected propagation timeout %v", cfg.PropagationTimeout)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default sqlite, got %q", cfg.DatabaseType)
	}
	if !slices.Equal(cfg.Milestones, []int{25, 50, 75, 100}) {
		t.Errorf("unexpected default milestones %v", cfg.Milestones)
	}
	if cfg.ConnectionBuffer != 64 || cfg.ChannelQuota != 64 {
		t.Errorf("unexpected buffer/quota defaults %d/%d", cfg.ConnectionBuffer, cfg.ChannelQuota)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-t", "postgres", "-milestones", "50,100", "-jwt-secret", "cli-secret"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %q", cfg.DatabaseType)
	}
	if cfg.JWTSecret != "cli-secret" {
		t.Errorf("expected cli secret, got %q", cfg.JWTSecret)
	}
	if !slices.Equal(cfg.Milestones, []int{50, 100}) {
		t.Errorf("unexpected milestones %v", cfg.Milestones)
	}
}

func TestParseFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": "", "JWT_SECRET": "s"}, nil},
		{"missing secret", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": ""}, nil},
		{"bad port env", map[string]string{"PORT": "abc"}, nil},
		{"bad database type", nil, []string{"-t", "mysql"}},
		{"descending milestones", nil, []string{"-milestones", "50,25"}},
		{"milestone over 100", nil, []string{"-milestones", "50,150"}},
		{"non-numeric milestone", nil, []string{"-milestones", "a,b"}},
		{"zero buffer", nil, []string{"-conn-buffer", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CAMPUSVOTE_DOTENV_CHECK=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAMPUSVOTE_DOTENV_CHECK", "")
	os.Unsetenv("CAMPUSVOTE_DOTENV_CHECK")

	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("CAMPUSVOTE_DOTENV_CHECK"); got != "loaded" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port               int           `env:"PORT" envDefault:"3318"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	DatabaseType       string        `env:"DATABASE_TYPE" envDefault:"sqlite"`
	JWTSecret          string        `env:"JWT_SECRET"`
	Milestones         []int         `env:"MILESTONES" envSeparator:"," envDefault:"25,50,75,100"`
	ConnectionBuffer   int           `env:"CONNECTION_BUFFER" envDefault:"64"`
	ChannelQuota       int           `env:"CHANNEL_QUOTA" envDefault:"64"`
	PropagationTimeout time.Duration `env:"PROPAGATION_TIMEOUT" envDefault:"5s"`
}

// LoadDotEnv loads variables from a .env file without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseFlags reads the environment, then lets CLI flags override it
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	flags := flag.NewFlagSet("campusvote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite, postgres or pgx)")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Token signing secret (prefer env)")

	// Live channel tuning
	milestones := flags.String("milestones", joinInts(cfg.Milestones), "Turnout milestones, ascending percentages")
	flags.IntVar(&cfg.ConnectionBuffer, "conn-buffer", cfg.ConnectionBuffer, "Outbound events queued per connection")
	flags.IntVar(&cfg.ChannelQuota, "channel-quota", cfg.ChannelQuota, "Max channels per connection (0 = unlimited)")
	flags.DurationVar(&cfg.PropagationTimeout, "propagation-timeout", cfg.PropagationTimeout, "Deadline for post-commit propagation")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.Milestones, err = parseInts(*milestones); err != nil {
		return Config{}, fmt.Errorf("invalid milestones: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required and bounded settings.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch c.DatabaseType {
	case "sqlite", "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET required")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ConnectionBuffer <= 0 {
		return errors.New("connection buffer must be positive")
	}
	if c.ChannelQuota < 0 {
		return errors.New("channel quota cannot be negative")
	}
	if c.PropagationTimeout <= 0 {
		return errors.New("propagation timeout must be positive")
	}

	if len(c.Milestones) == 0 {
		return errors.New("at least one milestone is required")
	}
	prev := 0
	for _, m := range c.Milestones {
		if m <= prev || m > 100 {
			return fmt.Errorf("milestones must be strictly ascending within 1-100, got %v", c.Milestones)
		}
		prev = m
	}
	return nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

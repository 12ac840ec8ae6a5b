package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/vitos/take_profit/internal/domain"
	"github.com/vitos/take_profit/internal/infrastructure/logger"
	"github.com/vitos/take_profit/internal/usecase"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging logger.Options       `yaml:"logging"`
	Server  ServerConfig         `yaml:"server"`
	Ladder  usecase.LadderConfig `yaml:"ladder"`
	Order   OrderConfig          `yaml:"order"`
}

type ServerConfig struct {
	Port              int     `yaml:"port"`
	CommandsPerSecond float64 `yaml:"commands_per_second"` // 0 disables throttling
	Burst             int     `yaml:"burst"`
}

// OrderConfig seeds the order the form starts with.
type OrderConfig struct {
	Side           domain.OrderSide `yaml:"side"`
	UnitPrice      float64          `yaml:"unit_price"`
	PositionAmount float64          `yaml:"position_amount"`
}

func Default() *Config {
	return &Config{
		Logging: logger.Options{Level: "info", Encoding: "json"},
		Server:  ServerConfig{Port: 8080, CommandsPerSecond: 50, Burst: 100},
		Ladder:  usecase.DefaultLadderConfig(),
		Order:   OrderConfig{Side: domain.SideBuy},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides (an optional .env file is loaded first).
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	// A missing .env is fine, plain environment variables still apply.
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LADDER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LADDER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LADDER_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LADDER_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LADDER_RATE_LIMIT %q: %w", v, err)
		}
		c.Server.CommandsPerSecond = limit
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.CommandsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("server.commands_per_second cannot be negative"))
	}
	if c.Server.CommandsPerSecond > 0 && c.Server.Burst < 1 {
		errs = append(errs, fmt.Errorf("server.burst must be at least 1 when throttling is on"))
	}
	if !c.Order.Side.Valid() {
		errs = append(errs, fmt.Errorf("order.side must be buy or sell, got %q", c.Order.Side))
	}
	if c.Order.UnitPrice < 0 || c.Order.PositionAmount < 0 {
		errs = append(errs, fmt.Errorf("order.unit_price and order.position_amount cannot be negative"))
	}
	if math.IsInf(c.Order.UnitPrice*c.Order.PositionAmount, 0) {
		errs = append(errs, fmt.Errorf("order total value overflows"))
	}
	if err := c.Ladder.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ladder: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}
	return nil
}

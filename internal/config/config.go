// Package config holds the environment-sourced service configuration.
package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/kelseyhightower/envconfig"
)

const (
	ModeTest       = "test"
	ModeProduction = "production"
)

type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	DBDSN   string `envconfig:"DB_DSN" required:"true"`

	Mpay24Mode     string `envconfig:"MPAY24_MODE" default:"test"`
	Mpay24User     string `envconfig:"MPAY24_USER" default:""`
	Mpay24Password string `envconfig:"MPAY24_PASSWORD" default:""`

	// Allow-list of subnets mPAY24 pushes IPNs from. The published ranges
	// can change, so they stay overridable. Setting the variable to an empty
	// value disables the source check entirely, which is a security-relevant
	// opt-out.
	IPNSubnets []string `envconfig:"MPAY24_IPN_SUBNETS" default:"213.164.25.224/27,217.175.200.16/28,213.208.153.58/32"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	// envconfig turns an explicitly empty variable into [""].
	cfg.IPNSubnets = cleanList(cfg.IPNSubnets)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Mpay24Mode != ModeTest && c.Mpay24Mode != ModeProduction {
		return fmt.Errorf("config: MPAY24_MODE must be %q or %q, got %q", ModeTest, ModeProduction, c.Mpay24Mode)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: BASE_URL must be an absolute URL, got %q", c.BaseURL)
	}

	if _, err := mysqldrv.ParseDSN(c.DBDSN); err != nil {
		return fmt.Errorf("config: invalid DB_DSN: %w", err)
	}

	for _, s := range c.IPNSubnets {
		if _, err := netip.ParsePrefix(s); err != nil {
			return fmt.Errorf("config: invalid CIDR %q in MPAY24_IPN_SUBNETS: %w", s, err)
		}
	}

	return nil
}

// TestMode reports whether payments run against the mPAY24 test system.
func (c *Config) TestMode() bool { return c.Mpay24Mode != ModeProduction }

func cleanList(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	metrics "github.com/ygrebnov/metrics/v2"
)

// Config is the demo configuration file.
type Config struct {
	Namespace string        `yaml:"namespace"`
	Listen    string        `yaml:"listen"`
	Routes    []string      `yaml:"routes"`
	Interval  time.Duration `yaml:"interval"`
	Buckets   BucketsConfig `yaml:"buckets"`
	// Tenants is the number of distinct tenant ids the simulator draws from.
	Tenants int `yaml:"tenants"`
}

type BucketsConfig struct {
	Start  float64 `yaml:"start"`
	Factor float64 `yaml:"factor"`
	Count  int     `yaml:"count"`
}

func defaultConfig() Config {
	return Config{
		Namespace: "demo",
		Listen:    ":9464",
		Routes: []string{
			"/api/v1/users",
			"/api/v1/users/{id}",
			"/api/v1/orders",
			"/api/v1/orders/{id}",
			"/healthz",
			"/metrics",
		},
		Interval: 50 * time.Millisecond,
		Buckets:  BucketsConfig{Start: 0.005, Factor: 2, Count: 12},
		Tenants:  20,
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	if c.Namespace != "" {
		if err := metrics.ValidateName(c.Namespace); err != nil {
			errs = append(errs, fmt.Errorf("namespace: %w", err))
		}
	}
	if len(c.Routes) == 0 {
		errs = append(errs, errors.New("routes: at least one route is required"))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval: %s is not positive", c.Interval))
	}
	if c.Tenants < 1 {
		errs = append(errs, fmt.Errorf("tenants: %d, want at least 1", c.Tenants))
	}
	if _, err := metrics.ExponentialBuckets(c.Buckets.Start, c.Buckets.Factor, c.Buckets.Count); err != nil {
		errs = append(errs, fmt.Errorf("buckets: %w", err))
	}
	return errors.Join(errs...)
}

package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	HttpPort uint16 `envconfig:"GLUCOLOG_HTTP_SERVER_PORT" default:"8080" required:"true"`

	// Defaults used when a dose request or metrics query does not override
	// them. Values carried over from the dashboards this service replaced.
	DefaultTargetGlucose            float64 `envconfig:"GLUCOLOG_DEFAULT_TARGET_GLUCOSE" default:"150"`
	DefaultInsulinSensitivityFactor float64 `envconfig:"GLUCOLOG_DEFAULT_ISF" default:"14.13"`
	LowGlucoseThreshold             float64 `envconfig:"GLUCOLOG_LOW_GLUCOSE_THRESHOLD" default:"70"`
	HighGlucoseThreshold            float64 `envconfig:"GLUCOLOG_HIGH_GLUCOSE_THRESHOLD" default:"180"`
}

func New() *Config {
	return &Config{}
}

func (c *Config) LoadFromEnv() error {
	return envconfig.Process("", c)
}

func NewFromEnv() (*Config, error) {
	cfg := New()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

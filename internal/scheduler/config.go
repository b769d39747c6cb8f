package scheduler

import "time"

// Config controls the unprocessed-payment sweep loop.
type Config struct {
	BatchSize      int
	PollInterval   time.Duration
	PaymentTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BatchSize:      50,
		PollInterval:   30 * time.Second,
		PaymentTimeout: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.PaymentTimeout <= 0 {
		c.PaymentTimeout = defaults.PaymentTimeout
	}
	return c
}

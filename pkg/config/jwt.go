package config

import (
	"fmt"
	"time"
)

type JWTConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
	Issuer string        `koanf:"issuer"`
}

func (c *JWTConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT secret is not configured")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("invalid JWT token TTL: %v", c.TTL)
	}
	return nil
}

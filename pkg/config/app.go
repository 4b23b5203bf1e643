package config

import (
	"fmt"
	"strings"
)

// AppConfig controls environment-dependent behavior. In dev mode exception
// envelopes carry real error messages; in prod they are replaced with a
// generic one.
type AppConfig struct {
	Env string `koanf:"env"`
}

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// IsDev reports whether the application runs in dev mode.
func (c *AppConfig) IsDev() bool {
	return c.Env == EnvDev
}

// String returns a string representation of the app configuration.
func (c *AppConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- App ---\n")
	b.WriteString(fmt.Sprintf("  env: %s\n", c.Env))
	return b.String()
}

func (c *AppConfig) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd:
		return nil
	case "":
		c.Env = EnvProd
		return nil
	default:
		return fmt.Errorf("invalid app env %q, must be %q or %q", c.Env, EnvDev, EnvProd)
	}
}

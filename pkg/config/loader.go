// Package config parses environment variables into tagged structs. The
// storefront's Config in internal/config is the only consumer; it layers its
// own validation on top of the raw parse.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the environment using its `env` tags, for example:
//
//	type Config struct {
//	    HTTPPort  int    `env:"HTTP_PORT" envDefault:"8080"`
//	    RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Package config loads service settings from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses the process environment into cfg. Fields are mapped with
// `env` tags; see LoadFrom for an explicit variable set.
func Load(cfg any) error {
	return parse(cfg, env.Options{})
}

// LoadFrom parses cfg from environ instead of the process environment.
// Variables missing from environ fall back to their envDefault.
func LoadFrom(cfg any, environ map[string]string) error {
	if environ == nil {
		environ = map[string]string{}
	}
	return parse(cfg, env.Options{Environment: environ})
}

func parse(cfg any, opts env.Options) error {
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

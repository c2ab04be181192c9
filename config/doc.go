// Package config loads and validates scopekit configuration.
//
// LoadConfig reads an optional YAML file and .env file, then overlays
// environment variables, using Viper and godotenv. With an env prefix of
// "ORDERS", ORDERS_CONTAINER_ALLOW_OVERRIDES=true sets
// container.allow_overrides.
//
// # Usage
//
//	var cfg config.ServiceConfig
//	if err := config.LoadConfig("orders", &cfg, config.WithEnvPrefix("ORDERS")); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config

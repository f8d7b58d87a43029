// Package config loads typed configuration from the environment.
//
// Structs describe their variables with caarlos0/env tags. Load parses them
// once per type and caches the result; a ".env" file in the working directory
// is read first if present (joho/godotenv), without overriding variables that
// are already exported.
//
//	type BoltConfig struct {
//	    Path string `env:"BOLT_PATH" envDefault:"data/volstate.db"`
//	}
//
//	cfg, err := config.Load[BoltConfig]()
//
// Use LoadEnv to read additional files before the first Load and Reset to
// clear the cache in tests.
package config

// Package config loads configuration structs from the process environment.
//
// Values are read from optional .env files (joho/godotenv; variables already
// set in the environment win) and then parsed into a struct annotated with
// caarlos0/env tags:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg, config.WithEnvFiles(".env")); err != nil {
//		return err
//	}
package config

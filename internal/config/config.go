package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          string
	AllowOrigins  string
	TZDefault     string
	JWTSecret     string
	TokenTTLHours int
	ReqTimeoutSec int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:          getenv("PORT", "8080"),
		AllowOrigins:  getenv("ALLOW_ORIGINS", "*"),
		TZDefault:     getenv("TZ_DEFAULT", "America/Argentina/Buenos_Aires"),
		JWTSecret:     getenv("JWT_SECRET", "dev-insecure-secret-change"),
		TokenTTLHours: atoi("TOKEN_TTL_HOURS", 24*30),
		ReqTimeoutSec: atoi("REQUEST_TIMEOUT_SECONDS", 30),
	}
}

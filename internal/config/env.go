package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env if present; in production the variables come from the
// environment directly.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from environment")
	}
}

type JWTConfig struct {
	Secret   []byte
	TTLHours int
}

func LoadJWT() JWTConfig {
	ttl := 24
	if v, err := strconv.Atoi(os.Getenv("JWT_TTL_HOURS")); err == nil && v > 0 {
		ttl = v
	}
	return JWTConfig{
		Secret:   []byte(os.Getenv("JWT_SECRET")),
		TTLHours: ttl,
	}
}

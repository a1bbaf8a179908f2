package config

import (
	"github.com/rs/zerolog/log"
)

// GetRedisURL returns the Redis address for the dev server store, if configured
func GetRedisURL() string {
	value := GetEnvOrDefault("REDIS_URL", "")
	if value == "" {
		log.Debug().Msg("Redis URL not set - dev server will use the in-memory store")
	}
	return value
}

// GetRedisPassword returns the Redis password, if configured
func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}

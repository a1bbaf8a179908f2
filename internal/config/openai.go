package config

import "github.com/rs/zerolog/log"

// GetOpenAIKey returns the OpenAI key for the dev server replier.
// The key is optional: without it the dev server falls back to canned replies.
func GetOpenAIKey() string {
	value := GetEnvOrDefault("OPENAI_KEY", "")
	if value == "" {
		log.Debug().Msg("OPENAI_KEY not set - dev server will use canned replies")
	}
	return value
}

// Package config loads and validates the process configuration from the
// environment at startup. Configuration is never hot reloaded.
package config

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/raildeck/raildeck/pkg/util"
)

type Config struct {
	LDBEndpoint    string `validate:"omitempty,url"`
	LDBAccessToken string

	KnowledgeEndpoint string `validate:"omitempty,url"`
	KnowledgeAPIKey   string

	PrimarySource      string `validate:"required"`
	FallbackEnabled    bool
	EnhancementEnabled bool

	CacheTTLSeconds        int `validate:"gt=0"`
	RingCapacity           int `validate:"gt=0"`
	RateLimit              int `validate:"gt=0"`
	RateLimitWindowSeconds int `validate:"gt=0"`

	MovementQueue string `validate:"required"`

	StompAddress  string
	StompUsername string
	StompPassword string
	StompTopic    string
	StompClientID string

	StanoxLookupEndpoint string `validate:"omitempty,url"`
	StanoxOverridePath   string
}

// Load reads RAILDECK_* environment variables, applies defaults and
// validates the result.
func Load() (*Config, error) {
	env := util.GetEnvironmentVariables()

	cfg := &Config{
		LDBEndpoint:    env["RAILDECK_LDB_ENDPOINT"],
		LDBAccessToken: env["RAILDECK_LDB_ACCESS_TOKEN"],

		KnowledgeEndpoint: env["RAILDECK_KNOWLEDGE_ENDPOINT"],
		KnowledgeAPIKey:   env["RAILDECK_KNOWLEDGE_API_KEY"],

		PrimarySource:      withDefault(env["RAILDECK_PRIMARY_SOURCE"], "national-rail-ldb"),
		FallbackEnabled:    env["RAILDECK_FALLBACK_ENABLED"] != "NO",
		EnhancementEnabled: env["RAILDECK_ENHANCEMENT_ENABLED"] != "NO",

		CacheTTLSeconds:        intWithDefault(env["RAILDECK_CACHE_TTL_SECONDS"], 30),
		RingCapacity:           intWithDefault(env["RAILDECK_RING_CAPACITY"], 50),
		RateLimit:              intWithDefault(env["RAILDECK_RATE_LIMIT"], 60),
		RateLimitWindowSeconds: intWithDefault(env["RAILDECK_RATE_LIMIT_WINDOW_SECONDS"], 60),

		MovementQueue: withDefault(env["RAILDECK_MOVEMENT_QUEUE"], "movements-queue"),

		StompAddress:  env["RAILDECK_STOMP_ADDRESS"],
		StompUsername: env["RAILDECK_STOMP_USERNAME"],
		StompPassword: env["RAILDECK_STOMP_PASSWORD"],
		StompTopic:    env["RAILDECK_STOMP_TOPIC"],
		StompClientID: withDefault(env["RAILDECK_STOMP_CLIENT_ID"], "raildeck"),

		StanoxLookupEndpoint: env["RAILDECK_STANOX_LOOKUP_ENDPOINT"],
		StanoxOverridePath:   env["RAILDECK_STANOX_OVERRIDE_PATH"],
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func withDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func intWithDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}

	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}

	return fallback
}

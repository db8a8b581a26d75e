// internal/agents/extractor/config.go
package extractor

import "time"

type Config struct {
	// LLMTimeout bounds the optional LLM-assisted extraction call. The
	// regex extraction itself has no external dependency.
	LLMTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		LLMTimeout: 5 * time.Second,
	}
}

// internal/workers/territory/assign-representative/config.go
package assignrepresentative

import "time"

type Config struct {
	Timeout       time.Duration
	MaxAlternates int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		MaxAlternates: 3,
	}
}

// internal/workers/territory/resync-territory/config.go
package resyncterritory

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultDelay time.Duration
}

func LoadConfig() *Config {
	return &Config{
		// Batch runs walk many locations through geocoding, so the job
		// timeout is generous.
		Timeout:      5 * time.Minute,
		DefaultDelay: 200 * time.Millisecond,
	}
}

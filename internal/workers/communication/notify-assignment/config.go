// internal/workers/communication/notify-assignment/config.go
package notifyassignment

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		EmailEnabled: true,
		FromEmail:    "noreply@example.com",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.EmailEnabled && c.FromEmail == "" {
		return fmt.Errorf("from_email is required when email is enabled")
	}
	return nil
}

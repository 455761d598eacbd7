// internal/workers/scoring/notify-high-risk/config.go
package notifyhighrisk

import "time"

type Config struct {
	EmailEnabled     bool
	SMSEnabled       bool
	FromEmail        string
	AWSRegion        string
	UnderwriterEmail string
	UnderwriterPhone string
	Timeout          time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

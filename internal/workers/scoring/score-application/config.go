// internal/workers/scoring/score-application/config.go
package scoreapplication

import "time"

type Config struct {
	Scorer    string
	ModelPath string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Scorer:  "rule",
		Timeout: 30 * time.Second,
	}
}

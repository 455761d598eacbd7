// internal/workers/scoring/record-decision/config.go
package recorddecision

import "time"

type Config struct {
	Table   string
	Index   string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Table:   "risk_decisions",
		Index:   "risk-decisions",
		Timeout: 15 * time.Second,
	}
}

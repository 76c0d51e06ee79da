// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	ConnectionTCP = "tcp"
	ConnectionRTU = "rtu"

	MinIntervalS = 5
	MaxIntervalS = 300
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// Zero values mean "use the default" and are accepted here.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	d := cfg.Device

	if d.Host == "" {
		return fmt.Errorf("config: device.host is required")
	}

	switch d.Connection {
	case "", ConnectionTCP:
		if d.Port < 0 || d.Port > 65535 {
			return fmt.Errorf("config: device.port %d out of range 1-65535", d.Port)
		}
	case ConnectionRTU:
		if d.BaudRate < 0 {
			return fmt.Errorf("config: device.baud_rate %d must be positive", d.BaudRate)
		}
	default:
		return fmt.Errorf("config: device.connection %q must be %q or %q", d.Connection, ConnectionTCP, ConnectionRTU)
	}

	if d.UnitID > 247 {
		return fmt.Errorf("config: device.unit_id %d out of range 1-247", d.UnitID)
	}

	if d.TimeoutMs < 0 {
		return fmt.Errorf("config: device.timeout_ms %d must be positive", d.TimeoutMs)
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if p := cfg.Poll.IntervalS; p != 0 && (p < MinIntervalS || p > MaxIntervalS) {
		return fmt.Errorf("config: poll.interval_s %d out of range %d-%d", p, MinIntervalS, MaxIntervalS)
	}
	if cfg.Poll.FailureThreshold < 0 {
		return fmt.Errorf("config: poll.failure_threshold %d must be positive", cfg.Poll.FailureThreshold)
	}

	// ------------------------------------------------------------
	// MQTT (OPT-IN)
	// ------------------------------------------------------------

	if m := cfg.MQTT; m != nil {
		if m.Broker == "" {
			return fmt.Errorf("config: mqtt.broker is required when mqtt is set")
		}
		if m.QoS > 2 {
			return fmt.Errorf("config: mqtt.qos %d must be 0, 1 or 2", m.QoS)
		}
		if strings.ContainsAny(m.TopicPrefix, "+#") {
			return fmt.Errorf("config: mqtt.topic_prefix %q must not contain wildcards", m.TopicPrefix)
		}
	}

	// ------------------------------------------------------------
	// METRICS (OPT-IN)
	// ------------------------------------------------------------

	if m := cfg.Metrics; m != nil && m.Listen == "" {
		return fmt.Errorf("config: metrics.listen is required when metrics is set")
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("config: log.level: %w", err)
		}
	}

	return nil
}

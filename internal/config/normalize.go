// internal/config/normalize.go
package config

import (
	"path"
	"strings"
)

const (
	DefaultPort             = 502
	DefaultUnitID           = 1
	DefaultBaudRate         = 9600
	DefaultTimeoutMs        = 3000
	DefaultIntervalS        = 30
	DefaultFailureThreshold = 3
	DefaultMetricsPath      = "/metrics"
	DefaultLogLevel         = "info"
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Device
	if d.Connection == "" {
		d.Connection = ConnectionTCP
	}
	if d.ID == "" {
		d.ID = d.Host
		if d.Connection == ConnectionRTU {
			// serial paths would otherwise leak slashes into topics
			d.ID = path.Base(d.Host)
		}
	}
	if d.Port == 0 {
		d.Port = DefaultPort
	}
	if d.UnitID == 0 {
		d.UnitID = DefaultUnitID
	}
	if d.BaudRate == 0 {
		d.BaudRate = DefaultBaudRate
	}
	if d.TimeoutMs == 0 {
		d.TimeoutMs = DefaultTimeoutMs
	}

	if cfg.Poll.IntervalS == 0 {
		cfg.Poll.IntervalS = DefaultIntervalS
	}
	if cfg.Poll.FailureThreshold == 0 {
		cfg.Poll.FailureThreshold = DefaultFailureThreshold
	}

	if m := cfg.MQTT; m != nil {
		if m.ClientID == "" {
			m.ClientID = "apstorage-" + d.ID
		}
		if m.TopicPrefix == "" {
			m.TopicPrefix = "apstorage/" + d.ID
		}
		m.TopicPrefix = strings.TrimRight(m.TopicPrefix, "/")
	}

	if m := cfg.Metrics; m != nil && m.Path == "" {
		m.Path = DefaultMetricsPath
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// internal/config/config.go
package config

import (
	"net"
	"strconv"
	"time"
)

type Config struct {
	Device  DeviceConfig   `yaml:"device"`
	Poll    PollConfig     `yaml:"poll"`
	MQTT    *MQTTConfig    `yaml:"mqtt"`
	Metrics *MetricsConfig `yaml:"metrics"`
	Log     LogConfig      `yaml:"log"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	ID         string `yaml:"id"`
	Connection string `yaml:"connection"` // tcp | rtu
	Host       string `yaml:"host"`       // tcp host, or serial device for rtu
	Port       int    `yaml:"port"`
	UnitID     uint8  `yaml:"unit_id"`
	BaudRate   int    `yaml:"baud_rate"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	LogFrames  bool   `yaml:"log_frames"`
}

// Endpoint is host:port for tcp and the device path for rtu.
func (d DeviceConfig) Endpoint() string {
	if d.Connection == ConnectionRTU {
		return d.Host
	}
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

func (d DeviceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMs) * time.Millisecond
}

// ---- POLL ----

type PollConfig struct {
	IntervalS        int `yaml:"interval_s"`
	FailureThreshold int `yaml:"failure_threshold"`
}

func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalS) * time.Second
}

// ---- MQTT (optional) ----

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
	Retain      bool   `yaml:"retain"`
	Commands    bool   `yaml:"commands"`
}

// ---- METRICS (optional) ----

type MetricsConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

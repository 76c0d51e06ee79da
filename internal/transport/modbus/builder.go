// internal/transport/modbus/builder.go
package modbus

import (
	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/apstorage-modbus/internal/config"
	"github.com/tamzrod/apstorage-modbus/internal/transport"
)

// Build maps the device section onto a transport client.
// The link kind is decided here and never revisited.
func Build(d cfg.DeviceConfig, logger zerolog.Logger) (*Client, error) {
	return New(Config{
		Kind:      transport.Kind(d.Connection),
		Endpoint:  d.Endpoint(),
		UnitID:    d.UnitID,
		BaudRate:  d.BaudRate,
		Timeout:   d.Timeout(),
		LogFrames: d.LogFrames,
		Logger:    logger.With().Str("component", "modbus").Logger(),
	})
}

// internal/transport/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/rs/zerolog"

	"github.com/tamzrod/apstorage-modbus/internal/transport"
)

// DefaultTimeout is the response timeout when none is configured.
const DefaultTimeout = 3 * time.Second

// Config is minimal transport config.
type Config struct {
	Kind transport.Kind

	// Endpoint is host:port for TCP or the serial device path for RTU.
	Endpoint string
	UnitID   uint8
	BaudRate int
	Timeout  time.Duration

	// LogFrames routes goburrow's frame log into Logger.
	LogFrames bool
	Logger    zerolog.Logger
}

// handler is what both goburrow client handlers provide.
type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// Client implements transport.Port on goburrow/modbus.
// It serializes requests; goburrow clients are not safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	cfg     Config
	handler handler
	client  modbus.Client
}

// New validates cfg. It does not dial; call Connect.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}
	switch cfg.Kind {
	case transport.KindTCP:
	case transport.KindRTU:
		if cfg.BaudRate <= 0 {
			return nil, errors.New("modbus client: baud rate required for rtu")
		}
	default:
		return nil, fmt.Errorf("modbus client: unsupported kind %q", cfg.Kind)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{cfg: cfg}, nil
}

func (c *Client) newHandler() handler {
	var frameLog *log.Logger
	if c.cfg.LogFrames {
		frameLog = log.New(c.cfg.Logger, "modbus: ", 0)
	}

	if c.cfg.Kind == transport.KindRTU {
		h := modbus.NewRTUClientHandler(c.cfg.Endpoint)
		h.BaudRate = c.cfg.BaudRate
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 1
		h.SlaveId = c.cfg.UnitID
		h.Timeout = c.cfg.Timeout
		h.Logger = frameLog
		return h
	}

	h := modbus.NewTCPClientHandler(c.cfg.Endpoint)
	h.SlaveId = c.cfg.UnitID
	h.Timeout = c.cfg.Timeout
	h.Logger = frameLog
	return h
}

// Connect opens a fresh link, replacing any previous one.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handler != nil {
		_ = c.handler.Close()
		c.handler, c.client = nil, nil
	}

	h := c.newHandler()
	if err := h.Connect(); err != nil {
		return &transport.ConnectionError{Endpoint: c.cfg.Endpoint, Err: err}
	}

	c.handler = h
	c.client = modbus.NewClient(h)
	return nil
}

// Disconnect closes the link. Safe to call when not connected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handler == nil {
		return nil
	}
	err := c.handler.Close()
	c.handler, c.client = nil, nil
	return err
}

func (c *Client) ReadHoldingRegisters(addr, count uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil, transport.ErrNotConnected
	}
	if count == 0 {
		return nil, nil
	}

	b, err := c.client.ReadHoldingRegisters(addr, count)
	if err != nil {
		return nil, &transport.TransportError{Op: "read", Address: addr, Err: translate(err)}
	}
	if len(b) != int(count)*2 {
		return nil, &transport.TransportError{
			Op:      "read",
			Address: addr,
			Err:     fmt.Errorf("short payload: got=%d bytes want=%d", len(b), int(count)*2),
		}
	}
	return unpackRegisters(b), nil
}

func (c *Client) WriteHoldingRegister(addr, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return transport.ErrNotConnected
	}
	if _, err := c.client.WriteSingleRegister(addr, value); err != nil {
		return &transport.TransportError{Op: "write", Address: addr, Err: translate(err)}
	}
	return nil
}

// translate maps goburrow exception responses onto transport.DeviceError.
func translate(err error) error {
	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return &transport.DeviceError{Function: me.FunctionCode, Exception: me.ExceptionCode}
	}
	return err
}

// unpackRegisters decodes big-endian register bytes.
func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}

// internal/writer/mqtt/writer.go
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/tamzrod/apstorage-modbus/internal/poller"
	"github.com/tamzrod/apstorage-modbus/internal/register"
)

const (
	topicState        = "state"
	topicAvailability = "availability"
	topicWritable     = "writable"
	topicSet          = "set"

	payloadOnline  = "online"
	payloadOffline = "offline"

	// DefaultPublishTimeout bounds every broker round trip.
	DefaultPublishTimeout = 5 * time.Second
)

// Setter accepts control writes. *poller.Poller implements it.
type Setter interface {
	SetValue(addr uint16, display float64) error
}

type Config struct {
	Device  string
	Prefix  string
	QoS     byte
	Retain  bool
	Timeout time.Duration
	Catalog *register.Catalog
	Logger  zerolog.Logger
}

// Writer publishes snapshots as JSON and relays set commands.
//
// Availability and writable metadata are retained and only re-sent when
// they change or after a failed publish.
type Writer struct {
	cfg Config
	cli Client
	log zerolog.Logger

	mu        sync.Mutex
	available *bool
	metaSent  bool
}

func New(c Config, cli Client) (*Writer, error) {
	if cli == nil {
		return nil, errors.New("mqtt writer: client required")
	}
	if c.Catalog == nil {
		return nil, errors.New("mqtt writer: catalog required")
	}
	c.Prefix = strings.TrimSuffix(c.Prefix, "/")
	if c.Prefix == "" {
		return nil, errors.New("mqtt writer: topic prefix required")
	}
	if c.QoS > 2 {
		return nil, fmt.Errorf("mqtt writer: invalid qos %d", c.QoS)
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultPublishTimeout
	}
	return &Writer{
		cfg: c,
		cli: cli,
		log: c.Logger.With().Str("component", "mqtt").Logger(),
	}, nil
}

func (w *Writer) topic(leaf string) string {
	return w.cfg.Prefix + "/" + leaf
}

func commandTopic(prefix string, addr uint16) string {
	return prefix + "/" + topicSet + "/" + strconv.Itoa(int(addr))
}

// Write implements writer.Writer.
func (w *Writer) Write(snap poller.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []string

	if !w.metaSent {
		if err := w.publishJSON(w.topic(topicWritable), true, buildWritable(w.cfg.Prefix, w.cfg.Catalog)); err != nil {
			errs = append(errs, err.Error())
		} else {
			w.metaSent = true
		}
	}

	avail := snap.LastUpdateSucceeded
	if w.available == nil || *w.available != avail {
		payload := payloadOffline
		if avail {
			payload = payloadOnline
		}
		if err := w.publish(w.topic(topicAvailability), true, payload); err != nil {
			errs = append(errs, err.Error())
			w.available = nil
		} else {
			w.available = &avail
		}
	}

	state := buildState(w.cfg.Device, snap, w.cfg.Catalog)
	if err := w.publishJSON(w.topic(topicState), w.cfg.Retain, state); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// Offline marks the device unavailable. Used on clean shutdown.
func (w *Writer) Offline() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.publish(w.topic(topicAvailability), true, payloadOffline); err != nil {
		return err
	}
	off := false
	w.available = &off
	return nil
}

// ServeCommands subscribes to <prefix>/set/+ and forwards every valid
// command to s. The payload is the display value as a decimal number.
func (w *Writer) ServeCommands(s Setter) error {
	filter := w.topic(topicSet) + "/+"
	tok := w.cli.Subscribe(filter, w.cfg.QoS, func(_ paho.Client, msg paho.Message) {
		w.handleCommand(s, msg.Topic(), msg.Payload())
	})
	if err := wait(tok, w.cfg.Timeout); err != nil {
		return fmt.Errorf("mqtt writer: subscribe %s: %w", filter, err)
	}
	w.log.Info().Str("topic", filter).Msg("listening for commands")
	return nil
}

// StopCommands drops the command subscription.
func (w *Writer) StopCommands() error {
	return wait(w.cli.Unsubscribe(w.topic(topicSet)+"/+"), w.cfg.Timeout)
}

func (w *Writer) handleCommand(s Setter, topic string, payload []byte) {
	addr, err := w.parseCommandTopic(topic)
	if err != nil {
		w.log.Warn().Err(err).Str("topic", topic).Msg("bad command topic")
		return
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		w.log.Warn().Uint16("address", addr).Str("payload", string(payload)).Msg("bad command payload")
		return
	}

	if err := s.SetValue(addr, value); err != nil {
		w.log.Warn().Err(err).Uint16("address", addr).Float64("value", value).Msg("command rejected")
		return
	}
	w.log.Info().Uint16("address", addr).Float64("value", value).Msg("command applied")
}

func (w *Writer) parseCommandTopic(topic string) (uint16, error) {
	base := w.topic(topicSet) + "/"
	if !strings.HasPrefix(topic, base) {
		return 0, fmt.Errorf("mqtt writer: unexpected topic %q", topic)
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(topic, base), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("mqtt writer: bad address in %q: %w", topic, err)
	}
	return uint16(n), nil
}

func (w *Writer) publishJSON(topic string, retained bool, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mqtt writer: encode %s: %w", topic, err)
	}
	return w.publish(topic, retained, b)
}

func (w *Writer) publish(topic string, retained bool, payload interface{}) error {
	if err := wait(w.cli.Publish(topic, w.cfg.QoS, retained, payload), w.cfg.Timeout); err != nil {
		return fmt.Errorf("mqtt writer: publish %s: %w", topic, err)
	}
	return nil
}

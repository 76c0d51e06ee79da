// internal/writer/mqtt/client.go
package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	cfg "github.com/tamzrod/apstorage-modbus/internal/config"
)

// Client is the subset of paho's client the writer uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

const connectTimeout = 10 * time.Second

var errTimeout = errors.New("mqtt: timed out")

// Dial connects to the broker. The last will marks the device offline
// if the process dies without a clean shutdown.
func Dial(c cfg.MQTTConfig) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID(c.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false).
		SetWill(c.TopicPrefix+"/"+topicAvailability, payloadOffline, c.QoS, true)
	if c.Username != "" {
		opts.SetUsername(c.Username)
		opts.SetPassword(c.Password)
	}

	mc := paho.NewClient(opts)
	if err := wait(mc.Connect(), connectTimeout); err != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", c.Broker, err)
	}
	return mc, nil
}

func wait(tok paho.Token, timeout time.Duration) error {
	if !tok.WaitTimeout(timeout) {
		return errTimeout
	}
	return tok.Error()
}

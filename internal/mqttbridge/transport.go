package mqttbridge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/rbright/predicweb/internal/config"
)

const (
	qos            = byte(1)
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	quiesceMillis  = 250
)

// Transport is the broker surface the bridge depends on.
type Transport interface {
	Publish(topic string, payload []byte, retained bool) error
	Subscribe(topic string, handler func(payload []byte)) error
	Close()
}

type pahoTransport struct {
	client mqtt.Client
}

// Dial connects to the broker in cfg. The client reconnects on its own after a lost connection.
func Dial(cfg config.MQTTConfig, logger *slog.Logger) (Transport, error) {
	broker := strings.TrimSpace(cfg.Broker)
	if broker == "" {
		return nil, errors.New("mqtt broker is empty")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetConnectTimeout(connectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("mqtt connected", "broker", broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "broker", broker, "error", err.Error())
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect mqtt broker %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect mqtt broker %s: %w", broker, err)
	}
	return &pahoTransport{client: client}, nil
}

func (p *pahoTransport) Publish(topic string, payload []byte, retained bool) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *pahoTransport) Subscribe(topic string, handler func(payload []byte)) error {
	token := p.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

func (p *pahoTransport) Close() {
	p.client.Disconnect(quiesceMillis)
}

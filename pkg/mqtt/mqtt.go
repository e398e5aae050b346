// Package mqtt publishes application events to an MQTT broker.
// Push gateways and chat clients subscribe to the topics built by Topic.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"aptcare/backend/config"
)

// Envelope is the JSON document written to every topic
type Envelope struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Payload   any    `json:"payload"`
}

// Client publishes JSON envelopes with the configured QoS
type Client struct {
	client  paho.Client
	prefix  string
	qos     byte
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient connects to the broker, retrying with exponential backoff
func NewClient(cfg *config.MQTTConfig, logger *zap.Logger) (*Client, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	// unique per instance so horizontally scaled servers do not kick each other off
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	})
	opts.SetOnConnectHandler(func(_ paho.Client) {
		logger.Info("mqtt connected", zap.String("broker", cfg.BrokerURL))
	})

	c := paho.NewClient(opts)

	const maxRetries = 4
	var err error
	for i := 0; i < maxRetries; i++ {
		token := c.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			return newClient(c, cfg, logger), nil
		}
		err = token.Error()
		backoff := time.Duration(1<<uint(i)) * time.Second
		logger.Warn("mqtt connect attempt failed",
			zap.Int("attempt", i+1), zap.Duration("retry_in", backoff), zap.Error(err))
		time.Sleep(backoff)
	}

	return nil, fmt.Errorf("connect mqtt after %d attempts: %w", maxRetries, err)
}

func newClient(c paho.Client, cfg *config.MQTTConfig, logger *zap.Logger) *Client {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		client:  c,
		prefix:  strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:     cfg.QoS,
		timeout: timeout,
		logger:  logger,
	}
}

// Topic joins parts under the configured prefix: <prefix>/a/b
func (c *Client) Topic(parts ...string) string {
	if c.prefix == "" {
		return strings.Join(parts, "/")
	}
	return c.prefix + "/" + strings.Join(parts, "/")
}

// Publish wraps payload in an Envelope and publishes it to topic.
// topic is relative to the configured prefix.
func (c *Client) Publish(ctx context.Context, topic, eventType string, payload any) error {
	env := Envelope{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode mqtt envelope: %w", err)
	}

	full := c.Topic(topic)
	token := c.client.Publish(full, c.qos, false, raw)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.timeout):
		return fmt.Errorf("publish %s: timed out after %s", full, c.timeout)
	}
	if err := token.Error(); err != nil {
		c.logger.Error("mqtt publish failed", zap.String("topic", full), zap.Error(err))
		return err
	}
	return nil
}

// Close disconnects, waiting up to 250ms for in-flight work
func (c *Client) Close() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}

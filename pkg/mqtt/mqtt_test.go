package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aptcare/backend/config"
)

// ── fakes ──

type fakeToken struct {
	done chan struct{}
	err  error
}

func newDoneToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePaho struct {
	paho.Client
	sent       []published
	publishErr error
	pending    bool
}

func (f *fakePaho) IsConnected() bool { return true }
func (f *fakePaho) Disconnect(uint)   {}

func (f *fakePaho) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	f.sent = append(f.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	if f.pending {
		return &fakeToken{done: make(chan struct{})}
	}
	return newDoneToken(f.publishErr)
}

func newTestClient(f *fakePaho, timeout time.Duration) *Client {
	return newClient(f, &config.MQTTConfig{TopicPrefix: "aptcare/", QoS: 1, PublishTimeout: timeout}, zap.NewNop())
}

// ── tests ──

func TestClient_Topic(t *testing.T) {
	c := newTestClient(&fakePaho{}, time.Second)
	assert.Equal(t, "aptcare/notifications/u-1", c.Topic("notifications", "u-1"))

	bare := newClient(&fakePaho{}, &config.MQTTConfig{}, zap.NewNop())
	assert.Equal(t, "conversations/c-1", bare.Topic("conversations", "c-1"))
}

func TestClient_Publish_WritesEnvelope(t *testing.T) {
	f := &fakePaho{}
	c := newTestClient(f, time.Second)

	err := c.Publish(context.Background(), "conversations/c-1", "message.created", map[string]string{"content": "xin chào"})
	require.NoError(t, err)
	require.Len(t, f.sent, 1)
	assert.Equal(t, "aptcare/conversations/c-1", f.sent[0].topic)
	assert.Equal(t, byte(1), f.sent[0].qos)

	var env Envelope
	require.NoError(t, json.Unmarshal(f.sent[0].payload, &env))
	assert.Equal(t, "message.created", env.Type)
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, map[string]any{"content": "xin chào"}, env.Payload)
}

func TestClient_Publish_BrokerError(t *testing.T) {
	f := &fakePaho{publishErr: errors.New("not authorized")}
	c := newTestClient(f, time.Second)

	err := c.Publish(context.Background(), "x", "t", nil)
	assert.EqualError(t, err, "not authorized")
}

func TestClient_Publish_Timeout(t *testing.T) {
	f := &fakePaho{pending: true}
	c := newTestClient(f, 10*time.Millisecond)

	err := c.Publish(context.Background(), "x", "t", nil)
	assert.ErrorContains(t, err, "timed out")
}

func TestClient_Publish_ContextCancelled(t *testing.T) {
	f := &fakePaho{pending: true}
	c := newTestClient(f, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Publish(ctx, "x", "t", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

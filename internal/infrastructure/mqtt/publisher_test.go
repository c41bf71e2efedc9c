package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/infrastructure/config"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient records publishes; every other paho.Client method is inert.
type fakeClient struct {
	connected  bool
	publishErr error
	sent       []published
}

func (c *fakeClient) IsConnected() bool       { return c.connected }
func (c *fakeClient) IsConnectionOpen() bool  { return c.connected }
func (c *fakeClient) Connect() paho.Token     { return doneToken{} }
func (c *fakeClient) Disconnect(quiesce uint) { c.connected = false }
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return doneToken{err: c.publishErr}
}
func (c *fakeClient) Subscribe(string, byte, paho.MessageHandler) paho.Token { return doneToken{} }
func (c *fakeClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return doneToken{}
}
func (c *fakeClient) Unsubscribe(...string) paho.Token          { return doneToken{} }
func (c *fakeClient) AddRoute(string, paho.MessageHandler)      {}
func (c *fakeClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

func TestTopics(t *testing.T) {
	topics := Topics{Prefix: "noticeboard"}
	assert.Equal(t, "noticeboard/building-complexes/12/notices", topics.NoticeTopic(12))
	assert.Equal(t, "noticeboard/invalidate", topics.InvalidateTopic())
}

func TestPublish(t *testing.T) {
	client := &fakeClient{connected: true}
	pub := NewPublisherFromClient(client, Topics{Prefix: "nb"}, 1, zap.NewNop())

	err := pub.Publish(pub.NoticeTopic(3), NoticeEvent{
		Type: EventNoticeStatusChanged, NoticeID: 9, BuildingComplexID: 3, Status: "published",
	})
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	assert.Equal(t, "nb/building-complexes/3/notices", client.sent[0].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)

	var event NoticeEvent
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &event))
	assert.Equal(t, uint(9), event.NoticeID)
	assert.Equal(t, "published", event.Status)
}

func TestPublish_NotConnected(t *testing.T) {
	client := &fakeClient{}
	pub := NewPublisherFromClient(client, Topics{Prefix: "nb"}, 0, zap.NewNop())

	assert.ErrorContains(t, pub.Publish("nb/invalidate", InvalidateEvent{Tags: []string{"notices"}}), "not connected")
	assert.Empty(t, client.sent)
}

func TestPublish_BrokerError(t *testing.T) {
	client := &fakeClient{connected: true, publishErr: errors.New("not authorized")}
	pub := NewPublisherFromClient(client, Topics{Prefix: "nb"}, 0, zap.NewNop())

	assert.ErrorContains(t, pub.Publish("nb/invalidate", InvalidateEvent{}), "not authorized")
}

func TestNewPublisher_WithoutBrokerIsNop(t *testing.T) {
	pub, err := NewPublisher(&config.Config{MQTTTopicPrefix: "nb/"}, zap.NewNop())
	require.NoError(t, err)

	assert.IsType(t, NopPublisher{}, pub)
	assert.NoError(t, pub.Publish(pub.InvalidateTopic(), InvalidateEvent{}))
	assert.Equal(t, "nb/invalidate", pub.InvalidateTopic())
}

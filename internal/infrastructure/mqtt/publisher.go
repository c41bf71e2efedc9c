package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/infrastructure/config"
)

const publishTimeout = 3 * time.Second

// Event types carried on the notices topic.
const (
	EventNoticeCreated       = "notice.created"
	EventNoticeStatusChanged = "notice.status_changed"
	EventNoticeDeleted       = "notice.deleted"
)

// NoticeEvent tells building displays that a notice changed.
type NoticeEvent struct {
	Type              string `json:"type"`
	NoticeID          uint   `json:"noticeId"`
	BuildingComplexID uint   `json:"buildingComplexId"`
	Status            string `json:"status,omitempty"`
	Timestamp         int64  `json:"timestamp"`
}

// InvalidateEvent tells display clients to drop cached data for the given tags.
type InvalidateEvent struct {
	Tags      []string `json:"tags"`
	Timestamp int64    `json:"timestamp"`
}

// Publisher pushes JSON events to the broker.
type Publisher interface {
	Publish(topic string, payload interface{}) error
	NoticeTopic(buildingComplexID uint) string
	InvalidateTopic() string
	Close()
}

// Topics builds topic names under a shared prefix.
type Topics struct {
	Prefix string
}

func (t Topics) NoticeTopic(buildingComplexID uint) string {
	return fmt.Sprintf("%s/building-complexes/%d/notices", t.Prefix, buildingComplexID)
}

func (t Topics) InvalidateTopic() string {
	return t.Prefix + "/invalidate"
}

type pahoPublisher struct {
	Topics
	client paho.Client
	qos    byte
	logger *zap.Logger
	mu     sync.Mutex
}

// NewPublisher connects to the configured broker. Without a broker URL it returns
// a publisher that drops every event.
func NewPublisher(cfg *config.Config, logger *zap.Logger) (Publisher, error) {
	topics := Topics{Prefix: strings.TrimSuffix(cfg.MQTTTopicPrefix, "/")}
	if cfg.MQTTBrokerURL == "" {
		logger.Info("MQTT broker not configured, display events disabled")
		return NopPublisher{Topics: topics}, nil
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.MQTTBrokerURL)
	// Unique client id so several instances can share a broker.
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})
	opts.SetOnConnectHandler(func(_ paho.Client) {
		logger.Info("MQTT connected", zap.String("broker", cfg.MQTTBrokerURL))
	})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("connect to MQTT broker %s: timeout", cfg.MQTTBrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.MQTTBrokerURL, err)
	}

	return NewPublisherFromClient(client, topics, byte(cfg.MQTTQoS), logger), nil
}

func NewPublisherFromClient(client paho.Client, topics Topics, qos byte, logger *zap.Logger) Publisher {
	return &pahoPublisher{
		Topics: topics,
		client: client,
		qos:    qos,
		logger: logger,
	}
}

func (p *pahoPublisher) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal MQTT payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.client.IsConnected() {
		return fmt.Errorf("publish to %s: client not connected", topic)
	}

	token := p.client.Publish(topic, p.qos, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.Debug("MQTT event published", zap.String("topic", topic), zap.Int("bytes", len(data)))
	return nil
}

func (p *pahoPublisher) Close() {
	p.client.Disconnect(250)
}

// NopPublisher drops every event.
type NopPublisher struct {
	Topics
}

func (NopPublisher) Publish(string, interface{}) error { return nil }

func (NopPublisher) Close() {}

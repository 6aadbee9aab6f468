package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"post-board/pkg/common/config"
)

// 事件类型，同时作为 topic 后缀
const (
	UserCreated = "user.created"
	PostCreated = "post.created"
	PostUpdated = "post.updated"
	PostDeleted = "post.deleted"
)

type Message struct {
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher 领域事件发布
type Publisher interface {
	Publish(ctx context.Context, eventType string, key string, data interface{}) error
	Close() error
}

// NopPublisher 未启用消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                               { return nil }

type KafkaPublisher struct {
	producer    sarama.SyncProducer
	topicPrefix string
}

func NewKafkaPublisher(producer sarama.SyncProducer, topicPrefix string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topicPrefix: topicPrefix}
}

// Dial 根据配置连接 Kafka，未启用时返回 NopPublisher
func Dial(cfg config.KafkaConfig) (Publisher, error) {
	if !cfg.Enabled {
		return NopPublisher{}, nil
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = cfg.MaxRetry

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("connect kafka %v: %w", cfg.Brokers, err)
	}
	hlog.Infof("Kafka producer connected to %v", cfg.Brokers)
	return NewKafkaPublisher(producer, cfg.TopicPrefix), nil
}

func (p *KafkaPublisher) Topic(eventType string) string {
	if p.topicPrefix == "" {
		return eventType
	}
	return p.topicPrefix + "." + eventType
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, key string, data interface{}) error {
	value, err := json.Marshal(Message{
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.Topic(eventType),
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s event: %w", eventType, err)
	}
	hlog.CtxDebugf(ctx, "event %s sent partition=%d offset=%d", eventType, partition, offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// PublishQuietly 事件发布失败只记录日志，不影响已持久化的业务结果
func PublishQuietly(ctx context.Context, p Publisher, eventType string, key string, data interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, eventType, key, data); err != nil {
		hlog.CtxWarnf(ctx, "publish %s key=%s failed: %v", eventType, key, err)
	}
}

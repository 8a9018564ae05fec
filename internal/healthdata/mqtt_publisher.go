package healthdata

import (
	"context"
	"encoding/json"
	"fmt"
)

// MessagePublisher MQTT 发布接口（common/mqtt.Client）
type MessagePublisher interface {
	Publish(topic string, retained bool, payload []byte) error
}

// MQTTPublisher 将快照以 retained 消息发布到固定 topic
type MQTTPublisher struct {
	client MessagePublisher
	topic  string
}

func NewMQTTPublisher(client MessagePublisher, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic}
}

func (p *MQTTPublisher) PublishSnapshot(_ context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return p.client.Publish(p.topic, true, payload)
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/potluckhq/potluck/internal/service"
)

// JoinNotifier publishes join greetings onto the notifications topic. The
// party id is the partition key, so all notifications for one party stay
// in order.
type JoinNotifier struct {
	producer *Producer
	topic    string
}

func NewJoinNotifier(producer *Producer, topic string) *JoinNotifier {
	return &JoinNotifier{
		producer: producer,
		topic:    topic,
	}
}

// PublishJoin implements service.Notifier.
func (n *JoinNotifier) PublishJoin(ctx context.Context, j *service.JoinNotification) error {
	value, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to marshal join notification: %w", err)
	}
	_, _, err = n.producer.Produce(ctx, n.topic, []byte(j.PartyID), value)
	return err
}

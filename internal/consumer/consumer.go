package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/potluckhq/potluck/internal/model"
	"github.com/potluckhq/potluck/internal/repository"
	"github.com/potluckhq/potluck/internal/service"
)

// NotificationConsumer drains the notifications topic and persists a row
// per join greeting for the party host.
type NotificationConsumer struct {
	store repository.Store
}

func NewNotificationConsumer(store repository.Store) *NotificationConsumer {
	return &NotificationConsumer{store: store}
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (consumer *NotificationConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (consumer *NotificationConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (consumer *NotificationConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		log.Printf("消费消息: value = %s, timestamp = %v, topic = %s", string(message.Value), message.Timestamp, message.Topic)

		var j service.JoinNotification
		if err := json.Unmarshal(message.Value, &j); err != nil {
			log.Printf("反序列化消息失败: %v", err)
			session.MarkMessage(message, "")
			continue
		}

		n := &model.Notification{
			ID:      uuid.New().String(),
			UserID:  j.HostID,
			PartyID: j.PartyID,
			Kind:    service.EventParticipantJoined,
			Body:    fmt.Sprintf("%s joined: %s", j.UserID, j.Message),
		}
		if err := consumer.store.Notifications().Create(session.Context(), n); err != nil {
			log.Printf("保存来自 Kafka 的通知失败: %v", err)
			// 暂时标记为已消费，避免死循环
			session.MarkMessage(message, "")
			continue
		}

		session.MarkMessage(message, "")
	}
	return nil
}

func StartConsumer(brokers []string, groupID string, topic string, consumer *NotificationConsumer) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	client, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		log.Fatalf("创建消费者组客户端失败: %v", err)
	}

	ctx := context.Background()
	go func() {
		for {
			if err := client.Consume(ctx, []string{topic}, consumer); err != nil {
				log.Printf("消费者错误: %v", err)
			}
			// check if context was cancelled, signaling that the consumer should stop
			if ctx.Err() != nil {
				return
			}
		}
	}()
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potluckhq/potluck/internal/service"
)

func newMockNotifier(t *testing.T) (*JoinNotifier, *mocks.SyncProducer) {
	t.Helper()

	mock := mocks.NewSyncProducer(t, nil)
	producer := &Producer{producer: mock}
	return NewJoinNotifier(producer, "potluck-joins"), mock
}

func TestPublishJoinKeyedByParty(t *testing.T) {
	notifier, mock := newMockNotifier(t)

	join := &service.JoinNotification{
		PartyID:  "party-1",
		HostID:   "host-1",
		UserID:   "guest-1",
		UserName: "guest",
		Message:  "hello!",
	}

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "potluck-joins" {
			return errors.New("wrong topic: " + msg.Topic)
		}

		// 同一个聚会的通知必须落在同一个分区
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "party-1" {
			return errors.New("wrong partition key: " + string(key))
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got service.JoinNotification
		if err := json.Unmarshal(value, &got); err != nil {
			return err
		}
		if got != *join {
			return errors.New("payload does not round-trip")
		}
		return nil
	})

	require.NoError(t, notifier.PublishJoin(context.Background(), join))
}

func TestPublishJoinSurfacesProducerError(t *testing.T) {
	notifier, mock := newMockNotifier(t)

	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := notifier.PublishJoin(context.Background(), &service.JoinNotification{PartyID: "party-1"})
	assert.Error(t, err)
}

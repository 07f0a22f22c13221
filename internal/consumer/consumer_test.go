package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potluckhq/potluck/internal/model"
	"github.com/potluckhq/potluck/internal/repository"
	"github.com/potluckhq/potluck/internal/service"
)

// memNotifications collects created rows so tests can assert on them.
type memNotifications struct {
	created []*model.Notification
	failErr error
}

func (m *memNotifications) Create(ctx context.Context, n *model.Notification) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.created = append(m.created, n)
	return nil
}

func (m *memNotifications) ListByUser(ctx context.Context, userID string) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range m.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotifications) MarkRead(ctx context.Context, id, userID string) error {
	return nil
}

// stubStore only serves Notifications; the consumer touches nothing else.
type stubStore struct {
	repository.Store
	notifications *memNotifications
}

func (s *stubStore) Notifications() repository.INotificationRepository {
	return s.notifications
}

type stubSession struct {
	ctx    context.Context
	marked []*sarama.ConsumerMessage
}

func (s *stubSession) Claims() map[string][]int32                                               { return nil }
func (s *stubSession) MemberID() string                                                         { return "test-member" }
func (s *stubSession) GenerationID() int32                                                      { return 1 }
func (s *stubSession) MarkOffset(topic string, partition int32, offset int64, metadata string)  {}
func (s *stubSession) Commit()                                                                  {}
func (s *stubSession) ResetOffset(topic string, partition int32, offset int64, metadata string) {}
func (s *stubSession) MarkMessage(msg *sarama.ConsumerMessage, metadata string) {
	s.marked = append(s.marked, msg)
}
func (s *stubSession) Context() context.Context { return s.ctx }

type stubClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *stubClaim) Topic() string                            { return "potluck-joins" }
func (c *stubClaim) Partition() int32                         { return 0 }
func (c *stubClaim) InitialOffset() int64                     { return 0 }
func (c *stubClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *stubClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func consumeMessages(t *testing.T, store repository.Store, values ...[]byte) *stubSession {
	t.Helper()

	session := &stubSession{ctx: context.Background()}
	claim := &stubClaim{messages: make(chan *sarama.ConsumerMessage, len(values))}
	for _, v := range values {
		claim.messages <- &sarama.ConsumerMessage{Topic: "potluck-joins", Value: v}
	}
	close(claim.messages)

	c := NewNotificationConsumer(store)
	require.NoError(t, c.Setup(session))
	require.NoError(t, c.ConsumeClaim(session, claim))
	require.NoError(t, c.Cleanup(session))
	return session
}

func TestConsumePersistsHostNotification(t *testing.T) {
	notifications := &memNotifications{}
	store := &stubStore{notifications: notifications}

	payload, err := json.Marshal(&service.JoinNotification{
		PartyID:  "party-1",
		HostID:   "host-1",
		UserID:   "guest-1",
		UserName: "guest",
		Message:  "bringing dessert!",
	})
	require.NoError(t, err)

	session := consumeMessages(t, store, payload)

	require.Len(t, notifications.created, 1)
	n := notifications.created[0]
	assert.Equal(t, "host-1", n.UserID)
	assert.Equal(t, "party-1", n.PartyID)
	assert.Equal(t, service.EventParticipantJoined, n.Kind)
	assert.Contains(t, n.Body, "guest-1")
	assert.Contains(t, n.Body, "bringing dessert!")
	assert.NotEmpty(t, n.ID)

	// 消费成功后必须提交 offset
	assert.Len(t, session.marked, 1)
}

func TestConsumeSkipsMalformedPayload(t *testing.T) {
	notifications := &memNotifications{}
	store := &stubStore{notifications: notifications}

	payload, err := json.Marshal(&service.JoinNotification{
		PartyID: "party-1",
		HostID:  "host-1",
		UserID:  "guest-1",
	})
	require.NoError(t, err)

	session := consumeMessages(t, store, []byte("{not json"), payload)

	// 坏消息被跳过但仍然提交，好消息照常入库
	require.Len(t, notifications.created, 1)
	assert.Equal(t, "party-1", notifications.created[0].PartyID)
	assert.Len(t, session.marked, 2)
}

func TestConsumeMarksMessageOnStoreFailure(t *testing.T) {
	notifications := &memNotifications{failErr: assert.AnError}
	store := &stubStore{notifications: notifications}

	payload, err := json.Marshal(&service.JoinNotification{
		PartyID: "party-1",
		HostID:  "host-1",
		UserID:  "guest-1",
	})
	require.NoError(t, err)

	session := consumeMessages(t, store, payload)

	assert.Empty(t, notifications.created)
	// 入库失败也不能卡死分区
	assert.Len(t, session.marked, 1)
}

package producer_test

import (
	"context"
	"errors"
	"testing"

	"go-workforce/internal/events"
	"go-workforce/internal/messaging/kafka"
	kafkaMock "go-workforce/internal/messaging/kafka/mock"
	"go-workforce/internal/messaging/kafka/producer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeWriter struct {
	messages []kafkago.Message
	failFor  map[string]bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if w.failFor[string(m.Key)] {
			return errors.New("leader not available")
		}
		w.messages = append(w.messages, m)
	}
	return nil
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestProcessPendingEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and marks sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{}

		pending := []kafka.OutboxEvent{
			{ID: "evt-1", AggregateType: "project", AggregateID: "7", EventType: events.ProjectMembersReplaced, Topic: events.ProjectMembershipTopic, Payload: []byte(`{}`)},
		}
		repo.EXPECT().ListPending(ctx, 50).Return(pending, nil)
		repo.EXPECT().MarkSent(ctx, "evt-1").Return(nil)

		sent, err := producer.ProcessPendingEvents(ctx, repo, writer, zap.NewNop())

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Len(t, writer.messages, 1)
		assert.Equal(t, "7", string(writer.messages[0].Key))
		assert.Equal(t, events.ProjectMembershipTopic, writer.messages[0].Topic)
		assert.Equal(t, events.ProjectMembersReplaced, header(writer.messages[0], "event_type"))
	})

	t.Run("publish failure marks failed and continues", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{failFor: map[string]bool{"1": true}}

		pending := []kafka.OutboxEvent{
			{ID: "evt-1", AggregateID: "1", Topic: events.EmployeeLifecycleTopic, Payload: []byte(`{}`)},
			{ID: "evt-2", AggregateID: "2", Topic: events.EmployeeLifecycleTopic, Payload: []byte(`{}`)},
		}
		repo.EXPECT().ListPending(ctx, 50).Return(pending, nil)
		repo.EXPECT().MarkFailed(ctx, "evt-1", "leader not available").Return(nil)
		repo.EXPECT().MarkSent(ctx, "evt-2").Return(nil)

		sent, err := producer.ProcessPendingEvents(ctx, repo, writer, zap.NewNop())

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("list error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)

		repo.EXPECT().ListPending(ctx, 50).Return(nil, errors.New("db down"))

		_, err := producer.ProcessPendingEvents(ctx, repo, &fakeWriter{}, zap.NewNop())

		assert.Error(t, err)
	})
}

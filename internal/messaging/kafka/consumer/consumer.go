package consumer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go-workforce/internal/bootstrap"
	"go-workforce/internal/events"
	"go-workforce/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const fetchRetryDelay = time.Second

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ConsumeAuditTrail turns every workforce event into an audit entry.
// Undecodable messages are committed and skipped.
func ConsumeAuditTrail(
	ctx context.Context,
	reader MessageReader,
	auditLogger bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.audit_trail")
	log.Info("audit trail consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("audit trail consumer stopped")
				return
			}
			log.Error("fetch workforce event failed", zap.Error(err))
			select {
			case <-ctx.Done():
				log.Info("audit trail consumer stopped")
				return
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		if err := handleMessage(ctx, msg, auditLogger); err != nil {
			log.Error("decode workforce event failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit workforce event failed", zap.Error(err))
			continue
		}
	}
}

func handleMessage(ctx context.Context, msg kafkago.Message, auditLogger bootstrap.AuditLogger) error {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return err
	}

	var meta map[string]any
	if err := json.Unmarshal(msg.Value, &meta); err != nil {
		return err
	}
	meta["topic"] = msg.Topic
	meta["key"] = string(msg.Key)

	if envelope.RequestID != "" {
		ctx = contextutil.WithRequestID(ctx, envelope.RequestID)
	}

	auditLogger.Log(ctx, bootstrap.AuditLog{
		Action:  strings.ToUpper(envelope.EventType),
		Message: auditMessage(envelope.EventType),
		Meta:    meta,
	})
	return nil
}

func auditMessage(eventType string) string {
	switch eventType {
	case events.EmployeeCreated:
		return "Employee created"
	case events.EmployeeDeleted:
		return "Employee deleted"
	case events.DepartmentDeleted:
		return "Department deleted with its employees"
	case events.ProjectMembersReplaced:
		return "Project members replaced"
	default:
		return "Unknown workforce event"
	}
}

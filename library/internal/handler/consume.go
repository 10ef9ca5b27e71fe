package handler

import (
	"context"
	"encoding/json"

	"github.com/Astemirdum/library-catalog/pkg/kafka"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type sweepOverdue func(ctx context.Context) (int64, error)

// Consumer runs the overdue sweep for every message on the sweep topic.
type Consumer struct {
	sweepHandler sweepOverdue
	log          *zap.Logger
}

func NewConsumer(sweep sweepOverdue, log *zap.Logger) *Consumer {
	return &Consumer{
		sweepHandler: sweep,
		log:          log.Named("consumer"),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var req kafka.SweepRequest
			if err := json.Unmarshal(message.Value, &req); err != nil {
				consumer.log.Error("bad sweep request", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			n, err := consumer.sweepHandler(session.Context())
			if err != nil {
				// left unmarked so the sweep is retried after a rebalance
				consumer.log.Error("consumer.sweepHandler", zap.Error(err))
				continue
			}

			consumer.log.Info("overdue sweep done",
				zap.Int64("updated", n),
				zap.String("requestedBy", req.RequestedBy),
				zap.Time("requestedAt", req.RequestedAt),
				zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

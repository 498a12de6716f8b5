package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// MessageHandler handles one user-deleted message body.
type MessageHandler interface {
	Handle(ctx context.Context, messageID, body string) bool
}

// Processor handles SQS batches delivered to the worker Lambda.
type Processor struct {
	handler MessageHandler
	log     *zap.Logger
}

// NewProcessor creates a new worker processor.
func NewProcessor(handler MessageHandler, log *zap.Logger) *Processor {
	return &Processor{handler: handler, log: log}
}

// Handle runs the cascade for every record and always returns nil, so Lambda
// deletes the whole batch. Failed cascades are logged by the handler and are
// not redelivered.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	failed := 0
	for _, rec := range ev.Records {
		if !p.handler.Handle(ctx, rec.MessageId, rec.Body) {
			failed++
		}
	}
	p.log.Info("processed user-deleted batch",
		zap.Int("records", len(ev.Records)),
		zap.Int("failed", failed),
	)
	return nil
}

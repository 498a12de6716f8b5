package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/imrishuroy/order-api/internal/aws"
)

// State is the subscriber lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateListening
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var (
	ErrAlreadyStarted = errors.New("subscriber already started")
	ErrNotListening   = errors.New("subscriber not listening")

	ErrStoppedWhileStarting = errors.New("subscriber stopped while starting")
)

// Handler processes one message body. Its result never affects the ack.
type Handler interface {
	Handle(ctx context.Context, messageID, body string) bool
}

// SubscriberConfig tunes the long-poll loop.
type SubscriberConfig struct {
	QueueName       string
	WaitTimeSeconds int32
	MaxMessages     int32
	ErrorBackoff    time.Duration
}

// Subscriber long-polls one SQS queue and hands messages to a Handler one at
// a time. Every received message is deleted after handling, whatever the
// outcome (at-most-once, no dead-letter).
type Subscriber struct {
	sqs     aws.SQSAPI
	cfg     SubscriberConfig
	handler Handler
	log     *zap.Logger

	state atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSubscriber builds a stopped subscriber.
func NewSubscriber(client aws.SQSAPI, cfg SubscriberConfig, handler Handler, log *zap.Logger) *Subscriber {
	if cfg.WaitTimeSeconds <= 0 {
		cfg.WaitTimeSeconds = 20
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 10
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Subscriber{
		sqs:     client,
		cfg:     cfg,
		handler: handler,
		log:     log.With(zap.String("queue", cfg.QueueName)),
	}
}

// State returns the current lifecycle state.
func (s *Subscriber) State() State {
	return State(s.state.Load())
}

// Start resolves the queue and begins listening in the background. The loop
// runs until Stop is called or ctx is cancelled. A Stop that arrives while
// the queue is still being resolved aborts the start with
// ErrStoppedWhileStarting.
func (s *Subscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	queueURL, err := aws.ResolveQueueURL(loopCtx, s.sqs, s.cfg.QueueName)
	if err == nil && s.state.CompareAndSwap(int32(StateStarting), int32(StateListening)) {
		s.log.Info("subscriber listening")
		go func() {
			defer close(done)
			s.loop(loopCtx, queueURL)
		}()
		return nil
	}

	cancel()
	close(done)
	if s.state.CompareAndSwap(int32(StateStarting), int32(StateStopped)) {
		return fmt.Errorf("start subscriber: %w", err)
	}
	// Stop owns the transition to Stopped from here.
	return ErrStoppedWhileStarting
}

// Stop stops receiving and waits for the in-flight message to finish, or for
// ctx to expire, whichever comes first. It also aborts a Start still
// resolving its queue.
func (s *Subscriber) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.CompareAndSwap(int32(StateListening), int32(StateStopping)) &&
		!s.state.CompareAndSwap(int32(StateStarting), int32(StateStopping)) {
		s.mu.Unlock()
		return ErrNotListening
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	select {
	case <-done:
		s.state.Store(int32(StateStopped))
		s.log.Info("subscriber stopped")
		return nil
	case <-ctx.Done():
		// The loop exits on its own once the handler returns.
		go func() {
			<-done
			s.state.Store(int32(StateStopped))
		}()
		return ctx.Err()
	}
}

// Run starts the subscriber, blocks until ctx is done and then stops it,
// allowing stopTimeout for in-flight work.
func (s *Subscriber) Run(ctx context.Context, stopTimeout time.Duration) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	return s.Stop(stopCtx)
}

func (s *Subscriber) loop(ctx context.Context, queueURL string) {
	for {
		if ctx.Err() != nil {
			return
		}

		out, err := s.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            &queueURL,
			MaxNumberOfMessages: s.cfg.MaxMessages,
			WaitTimeSeconds:     s.cfg.WaitTimeSeconds,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Error("receive failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.ErrorBackoff):
			}
			continue
		}

		for _, msg := range out.Messages {
			if ctx.Err() != nil {
				// Unhandled messages become visible again after the timeout.
				return
			}
			s.process(context.WithoutCancel(ctx), queueURL, msg)
		}
	}
}

// process handles a message and then acks it unconditionally.
func (s *Subscriber) process(ctx context.Context, queueURL string, msg sqstypes.Message) {
	id := deref(msg.MessageId)
	s.log.Debug("received message", zap.String("message_id", id))

	s.handler.Handle(ctx, id, deref(msg.Body))

	if _, err := s.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &queueURL,
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		s.log.Error("ack failed", zap.String("message_id", id), zap.Error(err))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

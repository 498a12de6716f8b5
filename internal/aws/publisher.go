package aws

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
)

// SQS rejects empty message bodies; empty payloads go out as this placeholder
// with the empty_payload attribute set.
const emptyBodyPlaceholder = " "

const (
	AttrTopic        = "topic"
	AttrEmptyPayload = "empty_payload"
)

// QueueName maps a logical topic to the queue that carries it in the given project.
func QueueName(project, topic string) string {
	if project == "" {
		return topic
	}
	return project + "-" + topic
}

// Publisher sends one SQS message per logical topic publish.
type Publisher struct {
	SQS     SQSAPI
	Project string

	mu        sync.Mutex
	queueURLs map[string]string
}

// NewPublisher returns a Publisher that resolves topic queues within project.
func NewPublisher(sqsClient SQSAPI, project string) *Publisher {
	return &Publisher{
		SQS:       sqsClient,
		Project:   project,
		queueURLs: map[string]string{},
	}
}

// Publish sends payload as the body of exactly one message on topic's queue.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	queueURL, err := p.queueURL(ctx, topic)
	if err != nil {
		return err
	}

	body := string(payload)
	attrs := map[string]sqstypes.MessageAttributeValue{
		AttrTopic: stringAttr(topic),
	}
	if body == "" {
		body = emptyBodyPlaceholder
		attrs[AttrEmptyPayload] = stringAttr("true")
	}

	_, err = p.SQS.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          &queueURL,
		MessageBody:       &body,
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("send message to %s: %w", topic, describe(err))
	}
	return nil
}

func (p *Publisher) queueURL(ctx context.Context, topic string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if u, ok := p.queueURLs[topic]; ok {
		return u, nil
	}
	u, err := ResolveQueueURL(ctx, p.SQS, QueueName(p.Project, topic))
	if err != nil {
		return "", err
	}
	p.queueURLs[topic] = u
	return u, nil
}

// ResolveQueueURL looks up the URL of a queue by name.
func ResolveQueueURL(ctx context.Context, client SQSAPI, name string) (string, error) {
	out, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: &name})
	if err != nil {
		return "", fmt.Errorf("get queue url %s: %w", name, describe(err))
	}
	if out.QueueUrl == nil || *out.QueueUrl == "" {
		return "", fmt.Errorf("get queue url %s: empty url", name)
	}
	return *out.QueueUrl, nil
}

// describe prefixes SDK API errors with their error code, keeping the chain intact.
func describe(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", apiErr.ErrorCode(), err)
	}
	return err
}

func stringAttr(v string) sqstypes.MessageAttributeValue {
	return sqstypes.MessageAttributeValue{
		DataType:    awsString("String"),
		StringValue: awsString(v),
	}
}

// awsString helper
func awsString(s string) *string { return &s }

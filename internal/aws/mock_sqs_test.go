package aws

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// mockSQS records sent messages per queue URL.
type mockSQS struct {
	mu          sync.Mutex
	queues      map[string]bool
	sent        map[string][]*sqs.SendMessageInput
	lookupCalls int
	sendErr     error
}

func newMockSQS(queueNames ...string) *mockSQS {
	m := &mockSQS{
		queues: map[string]bool{},
		sent:   map[string][]*sqs.SendMessageInput{},
	}
	for _, n := range queueNames {
		m.queues[n] = true
	}
	return m
}

func (m *mockSQS) GetQueueUrl(ctx context.Context, in *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupCalls++
	if !m.queues[*in.QueueName] {
		return nil, &sqstypes.QueueDoesNotExist{}
	}
	u := "https://sqs.local/000000000000/" + *in.QueueName
	return &sqs.GetQueueUrlOutput{QueueUrl: &u}, nil
}

func (m *mockSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	if in.MessageBody == nil || *in.MessageBody == "" {
		return nil, errors.New("message body must not be empty")
	}
	m.sent[*in.QueueUrl] = append(m.sent[*in.QueueUrl], in)
	return &sqs.SendMessageOutput{}, nil
}

func (m *mockSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (m *mockSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	return &sqs.DeleteMessageOutput{}, nil
}

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

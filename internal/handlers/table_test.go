package handlers

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// memTable is a single-page in-memory orders table, enough to drive the real
// store through the router.
type memTable struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newMemTable() *memTable {
	return &memTable{items: map[string]map[string]types.AttributeValue{}}
}

func orderID(m map[string]types.AttributeValue) (string, error) {
	v, ok := m["order_id"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("no order_id attribute")
	}
	return v.Value, nil
}

func (m *memTable) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := orderID(params.Item)
	if err != nil {
		return nil, err
	}
	if _, exists := m.items[k]; exists && params.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{}
	}
	m.items[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *memTable) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := orderID(params.Key)
	if err != nil {
		return nil, err
	}
	return &dyn.GetItemOutput{Item: m.items[k]}, nil
}

func (m *memTable) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := orderID(params.Key)
	if err != nil {
		return nil, err
	}
	delete(m.items, k)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *memTable) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if params.FilterExpression != nil {
		return nil, errors.New("filtered scan not supported")
	}
	out := &dyn.ScanOutput{}
	for _, item := range m.items {
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (m *memTable) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	return nil, errors.New("query not supported")
}

// recordingPublisher keeps every published payload by topic.
type recordingPublisher struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[string][]string{}
	}
	p.sent[topic] = append(p.sent[topic], string(payload))
	return nil
}

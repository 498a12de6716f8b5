package orders

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is an in-memory single-table mock keyed by order_id. It keeps
// insertion order so scans and queries are deterministic, and pages results
// when pageSize is set.
type mockDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	order    []string
	pageSize int

	failOps     map[string]error // op name -> error
	failDeletes map[string]error // order_id -> error
	calls       map[string]int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		items:       map[string]map[string]types.AttributeValue{},
		failOps:     map[string]error{},
		failDeletes: map[string]error{},
		calls:       map[string]int{},
	}
}

func pk(m map[string]types.AttributeValue) (string, error) {
	v, ok := m["order_id"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("no order_id attribute")
	}
	return v.Value, nil
}

func (m *mockDynamo) enter(op string) error {
	m.calls[op]++
	return m.failOps[op]
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("PutItem"); err != nil {
		return nil, err
	}
	k, err := pk(params.Item)
	if err != nil {
		return nil, err
	}
	_, exists := m.items[k]
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(order_id)" && exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if !exists {
		m.order = append(m.order, k)
	}
	m.items[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetItem"); err != nil {
		return nil, err
	}
	k, err := pk(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.items[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteItem"); err != nil {
		return nil, err
	}
	k, err := pk(params.Key)
	if err != nil {
		return nil, err
	}
	if err := m.failDeletes[k]; err != nil {
		return nil, err
	}
	if _, ok := m.items[k]; ok {
		delete(m.items, k)
		for i, id := range m.order {
			if id == k {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Scan"); err != nil {
		return nil, err
	}
	var want *string
	if params.FilterExpression != nil {
		if *params.FilterExpression != "user_id = :uid" {
			return nil, errors.New("unsupported filter expression")
		}
		want = &params.ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberS).Value
	}
	items, last := m.page(params.ExclusiveStartKey, want)
	return &dyn.ScanOutput{Items: items, LastEvaluatedKey: last}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Query"); err != nil {
		return nil, err
	}
	if params.IndexName == nil || params.KeyConditionExpression == nil || *params.KeyConditionExpression != "user_id = :uid" {
		return nil, errors.New("unsupported query")
	}
	want := params.ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberS).Value
	items, last := m.page(params.ExclusiveStartKey, &want)
	return &dyn.QueryOutput{Items: items, LastEvaluatedKey: last}, nil
}

// page walks items in insertion order from startKey, one page at a time.
// Filtering happens after the page is cut, as DynamoDB does for scans.
func (m *mockDynamo) page(startKey map[string]types.AttributeValue, userID *string) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	start := 0
	if startKey != nil {
		k, _ := pk(startKey)
		for i, id := range m.order {
			if id == k {
				start = i + 1
				break
			}
		}
	}
	end := len(m.order)
	if m.pageSize > 0 && start+m.pageSize < end {
		end = start + m.pageSize
	}

	var items []map[string]types.AttributeValue
	for _, id := range m.order[start:end] {
		item := m.items[id]
		if userID != nil {
			uid, ok := item["user_id"].(*types.AttributeValueMemberS)
			if !ok || uid.Value != *userID {
				continue
			}
		}
		items = append(items, item)
	}

	var last map[string]types.AttributeValue
	if end < len(m.order) {
		last = map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: m.order[end-1]},
		}
	}
	return items, last
}

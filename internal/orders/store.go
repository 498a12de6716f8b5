package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/imrishuroy/order-api/internal/aws"
)

// Store encapsulates operations on the orders table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	// userIndex is the GSI keyed on user_id. Empty means ListByUser scans.
	userIndex string
	newID     func() string
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName, userIndex string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		userIndex: userIndex,
		newID:     uuid.NewString,
	}
}

// Create persists a new order under a freshly assigned id and returns that id.
// The caller's CreatedAt is stored as given.
func (s *Store) Create(ctx context.Context, order Order) (string, error) {
	order.ID = s.newID()
	item, err := marshalOrder(order)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return "", fmt.Errorf("order id collision %s: %w", order.ID, err)
		}
		return "", storeErr("put item", err)
	}
	return order.ID, nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            orderKey(orderID),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, storeErr("get item", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	normalize(&o)
	return &o, nil
}

// List returns every order in the table. There is no bound on the result size.
func (s *Store) List(ctx context.Context) ([]Order, error) {
	p := dyn.NewScanPaginator(s.client, &dyn.ScanInput{
		TableName:      &s.tableName,
		ConsistentRead: awsBool(true),
	})

	out := []Order{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, storeErr("scan", err)
		}
		if out, err = appendItems(out, page.Items); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Put overwrites the whole record at orderID, creating it if absent.
// Fields missing from order are cleared, not merged.
func (s *Store) Put(ctx context.Context, orderID string, order Order) error {
	order.ID = orderID
	item, err := marshalOrder(order)
	if err != nil {
		return err
	}
	if _, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}); err != nil {
		return storeErr("put item", err)
	}
	return nil
}

// Delete removes the order. Deleting a missing id succeeds.
func (s *Store) Delete(ctx context.Context, orderID string) error {
	if _, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key:       orderKey(orderID),
	}); err != nil {
		return storeErr("delete item", err)
	}
	return nil
}

// ListByUser returns the orders whose user_id equals userID.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	values := map[string]types.AttributeValue{
		":uid": &types.AttributeValueMemberS{Value: userID},
	}

	out := []Order{}
	if s.userIndex == "" {
		p := dyn.NewScanPaginator(s.client, &dyn.ScanInput{
			TableName:                 &s.tableName,
			FilterExpression:          awsString("user_id = :uid"),
			ExpressionAttributeValues: values,
			ConsistentRead:            awsBool(true),
		})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, storeErr("scan by user", err)
			}
			if out, err = appendItems(out, page.Items); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	p := dyn.NewQueryPaginator(s.client, &dyn.QueryInput{
		TableName:                 &s.tableName,
		IndexName:                 &s.userIndex,
		KeyConditionExpression:    awsString("user_id = :uid"),
		ExpressionAttributeValues: values,
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, storeErr("query by user", err)
		}
		if out, err = appendItems(out, page.Items); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteByIDs deletes each id independently. Every id is attempted; the
// failures are joined and nothing already deleted is restored.
func (s *Store) DeleteByIDs(ctx context.Context, orderIDs []string) error {
	var errs []error
	for _, id := range orderIDs {
		if err := s.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func marshalOrder(order Order) (map[string]types.AttributeValue, error) {
	normalize(&order)
	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order item: %w", err)
	}
	return item, nil
}

func appendItems(dst []Order, items []map[string]types.AttributeValue) ([]Order, error) {
	var page []Order
	if err := attributevalue.UnmarshalListOfMaps(items, &page); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	for i := range page {
		normalize(&page[i])
	}
	return append(dst, page...), nil
}

// normalize keeps products a list (never NULL) in both the table and the API.
func normalize(o *Order) {
	if o.Products == nil {
		o.Products = []string{}
	}
}

func orderKey(orderID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberS{Value: orderID},
	}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }

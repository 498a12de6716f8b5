package orders

import "time"

// Topics published by the order workflow.
const (
	TopicOrderCreated = "order-created"
	TopicOrderDeleted = "order-deleted"
)

// Order represents the item stored in the Orders DynamoDB table.
type Order struct {
	ID        string    `dynamodbav:"order_id" json:"id"` // PK, assigned by the store
	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	UserID    string    `dynamodbav:"user_id" json:"userId"` // GSI hash key
	Products  []string  `dynamodbav:"products" json:"products"`
}

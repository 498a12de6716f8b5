package validation

import (
	"time"

	"github.com/imrishuroy/order-api/internal/orders"
)

// OrderRequest is the payload for POST /orders and PUT /orders/{id}.
// Any id in the body is ignored; the store or the path supplies it.
// Only create validates it; an update overwrites with whatever was sent.
type OrderRequest struct {
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId" validate:"required"` // owning user, cascade-delete key
	Products  []string  `json:"products"`
}

// ToOrder converts the request into the stored shape.
func (r OrderRequest) ToOrder() orders.Order {
	return orders.Order{
		CreatedAt: r.CreatedAt,
		UserID:    r.UserID,
		Products:  r.Products,
	}
}

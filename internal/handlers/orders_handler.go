package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/order-api/internal/orders"
	"github.com/imrishuroy/order-api/internal/validation"
)

// OrderService is the workflow the HTTP layer drives.
type OrderService interface {
	CreateOrder(ctx context.Context, order orders.Order) (string, error)
	GetOrderByID(ctx context.Context, orderID string) (*orders.Order, error)
	GetAllOrders(ctx context.Context) ([]orders.Order, error)
	UpdateOrder(ctx context.Context, orderID string, order orders.Order) error
	DeleteOrder(ctx context.Context, orderID string) error
}

// HandlerConfig groups dependencies for the orders handler.
type HandlerConfig struct {
	Service OrderService
	Logger  *zap.Logger
}

// RegisterOrdersRoutes registers routes for order API.
func RegisterOrdersRoutes(r gin.IRouter, cfg HandlerConfig) {
	h := &ordersHandler{
		svc:       cfg.Service,
		log:       cfg.Logger,
		validator: validation.New(),
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}

	r.POST("/orders", h.create)
	r.GET("/orders", h.list)
	r.GET("/orders/:id", h.get)
	r.PUT("/orders/:id", h.update)
	r.DELETE("/orders/:id", h.delete)
}

type ordersHandler struct {
	svc       OrderService
	log       *zap.Logger
	validator *validatorv10.Validate
}

func (h *ordersHandler) create(c *gin.Context) {
	var req validation.OrderRequest
	if err := validation.BindAndValidate(c, &req, h.validator); err != nil {
		return
	}

	id, err := h.svc.CreateOrder(c.Request.Context(), req.ToOrder())
	if err != nil {
		if id != "" {
			// stored, but the order-created event was not sent
			h.log.Warn("order created with publish failure", zap.String("order_id", id), zap.Error(err))
		}
		internalError(c, err)
		return
	}
	c.String(http.StatusOK, id)
}

func (h *ordersHandler) get(c *gin.Context) {
	order, err := h.svc.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		internalError(c, err)
		return
	}
	if order == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *ordersHandler) list(c *gin.Context) {
	all, err := h.svc.GetAllOrders(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	if all == nil {
		all = []orders.Order{}
	}
	c.JSON(http.StatusOK, all)
}

// update is a full overwrite; fields missing from the body are cleared.
func (h *ordersHandler) update(c *gin.Context) {
	var req validation.OrderRequest
	if err := validation.Bind(c, &req); err != nil {
		return
	}

	if err := h.svc.UpdateOrder(c.Request.Context(), c.Param("id"), req.ToOrder()); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *ordersHandler) delete(c *gin.Context) {
	if err := h.svc.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

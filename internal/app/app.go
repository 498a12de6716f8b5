// Package app wires configuration into the concrete AWS-backed components.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/imrishuroy/order-api/internal/aws"
	"github.com/imrishuroy/order-api/internal/config"
	"github.com/imrishuroy/order-api/internal/events"
	"github.com/imrishuroy/order-api/internal/orders"
)

// App holds the components shared by the API and worker binaries.
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Clients *aws.AWSClients
	Orders  *orders.Service
}

// New connects to AWS and builds the order workflow.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	clients, err := aws.NewAWSClients(ctx, aws.Options{
		Region:           cfg.AWS.Region,
		EndpointOverride: cfg.AWS.EndpointOverride,
	})
	if err != nil {
		return nil, fmt.Errorf("init aws clients: %w", err)
	}
	return FromClients(cfg, log, clients), nil
}

// FromClients builds the workflow on already constructed clients.
func FromClients(cfg *config.Config, log *zap.Logger, clients *aws.AWSClients) *App {
	store := orders.NewStore(clients.DynamoDB, cfg.Orders.Table, cfg.Orders.UserIndex)
	publisher := aws.NewPublisher(clients.SQS, cfg.Events.Project)

	var recorder orders.Recorder
	if cfg.Metrics.Namespace != "" {
		recorder = aws.NewMetrics(clients.CloudWatch, cfg.Metrics.Namespace)
	}

	return &App{
		Config:  cfg,
		Log:     log,
		Clients: clients,
		Orders:  orders.NewService(store, publisher, recorder, log.Named("orders")),
	}
}

// CascadeHandler is the user-deleted message handler bound to the workflow.
func (a *App) CascadeHandler() *events.CascadeHandler {
	return &events.CascadeHandler{
		Orders: a.Orders,
		Log:    a.Log.Named("cascade"),
	}
}

// Subscriber listens on <project>-user-deleted-sub.
func (a *App) Subscriber() *events.Subscriber {
	ec := a.Config.Events
	return events.NewSubscriber(a.Clients.SQS, events.SubscriberConfig{
		QueueName:       aws.QueueName(ec.Project, events.UserDeletedSubscription),
		WaitTimeSeconds: ec.WaitTimeSeconds,
		MaxMessages:     ec.MaxMessages,
		ErrorBackoff:    ec.ErrorBackoff,
	}, a.CascadeHandler(), a.Log.Named("subscriber"))
}

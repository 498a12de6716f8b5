package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/imrishuroy/order-api/internal/app"
	"github.com/imrishuroy/order-api/internal/config"
	"github.com/imrishuroy/order-api/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "order-worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(logger.Options{
		Service: cfg.App.Name + "-worker",
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		File:    cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	p := NewProcessor(a.CascadeHandler(), log)

	if cfg.Server.RunLocal {
		// Local testing helper: LOCAL_SQS_BODY simulates a single event with that user id.
		if body := os.Getenv("LOCAL_SQS_BODY"); body != "" {
			return p.Handle(ctx, events.SQSEvent{
				Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
			})
		}
		log.Info("polling user-deleted queue")
		return a.Subscriber().Run(ctx, cfg.Events.StopTimeout)
	}

	log.Info("starting lambda worker", zap.String("project", cfg.Events.Project))
	lambda.StartWithOptions(p.Handle, lambda.WithContext(ctx))
	return nil
}

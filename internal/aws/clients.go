package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// AWSClients holds one client per service the order API talks to.
type AWSClients struct {
	DynamoDB   DynamoDBAPI   // orders table
	SQS        SQSAPI        // order-created, order-deleted, user-deleted-sub
	CloudWatch CloudWatchAPI // workflow counters
}

// NewAWSClients builds every client from one shared config so region and
// endpoint override apply uniformly.
func NewAWSClients(ctx context.Context, opts Options) (*AWSClients, error) {
	cfg, err := LoadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &AWSClients{
		DynamoDB:   dynamodb.NewFromConfig(cfg),
		SQS:        sqs.NewFromConfig(cfg),
		CloudWatch: cloudwatch.NewFromConfig(cfg),
	}, nil
}

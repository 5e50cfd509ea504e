package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/notify"
)

type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoDBClient mirrors entry changes into a DynamoDB table
type DynamoDBClient struct {
	svc   DynamoDBAPI
	table string
}

// NewDynamoDBClient creates a new DynamoDB client instance
func NewDynamoDBClient(ctx context.Context, region, table string) (*DynamoDBClient, error) {
	// Load AWS configuration from environment/credentials
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &DynamoDBClient{
		svc:   dynamodb.NewFromConfig(cfg),
		table: table,
	}, nil
}

// EntryUpdate represents the DynamoDB structure for an entry change.
// Items are keyed by partition and change time.
type EntryUpdate struct {
	Partition  string  `dynamodbav:"partition"`
	ChangedAt  int64   `dynamodbav:"changedAt"`
	EventID    string  `dynamodbav:"eventId"`
	Table      string  `dynamodbav:"table"`
	MeterID    string  `dynamodbav:"meterId"`
	ObservedAt string  `dynamodbav:"observedAt"`
	OldValue   float64 `dynamodbav:"oldValue"`
	NewValue   float64 `dynamodbav:"newValue"`
	ActorName  string  `dynamodbav:"actorName"`
	ActorEmail string  `dynamodbav:"actorEmail"`
}

func (c *DynamoDBClient) Name() string { return "dynamodb" }

// Publish stores the event as one item
func (c *DynamoDBClient) Publish(ctx context.Context, ev notify.Event) error {
	item, err := attributevalue.MarshalMap(toEntryUpdate(ev))
	if err != nil {
		return fmt.Errorf("failed to marshal entry update: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	}

	if _, err := c.svc.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}
	return nil
}

// RecentUpdates returns the newest entry changes of a partition
func (c *DynamoDBClient) RecentUpdates(ctx context.Context, p domain.Partition, limit int32) ([]EntryUpdate, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("#p = :p"),
		ExpressionAttributeNames: map[string]string{
			"#p": "partition",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: string(p)},
		},
		ScanIndexForward: aws.Bool(false), // Sort descending (newest first)
		Limit:            aws.Int32(limit),
	}

	result, err := c.svc.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	var out []EntryUpdate
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry updates: %w", err)
	}
	return out, nil
}

func toEntryUpdate(ev notify.Event) EntryUpdate {
	rec := ev.Record
	return EntryUpdate{
		Partition:  string(ev.Partition),
		ChangedAt:  rec.ChangedAt.UnixMilli(),
		EventID:    ev.ID,
		Table:      rec.EnergyType,
		MeterID:    rec.MeterID,
		ObservedAt: rec.ObservedAt.Format(domain.TimestampLayout),
		OldValue:   rec.OldValue,
		NewValue:   rec.NewValue,
		ActorName:  rec.Actor.Name,
		ActorEmail: rec.Actor.Email,
	}
}

package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/audit"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/notify"
)

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient wraps AWS SNS client for entry change notifications
type SNSClient struct {
	svc      SNSAPI
	topicArn string
}

// NewSNSClient creates a new SNS client instance
func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}, nil
}

func (c *SNSClient) Name() string { return "sns" }

// Publish sends a human readable summary of the change
func (c *SNSClient) Publish(ctx context.Context, ev notify.Event) error {
	rec := ev.Record
	subject := fmt.Sprintf("Energy Usage Database: %s entry updated", rec.EnergyType)
	message := fmt.Sprintf(
		"Entry Update\n\n"+
			"Table: %s\n"+
			"Meter: %s\n"+
			"Reading time: %s\n"+
			"Old value: %s\n"+
			"New value: %s\n"+
			"Changed by: %s (%s)\n"+
			"Changed at: %s\n",
		rec.EnergyType,
		rec.MeterID,
		rec.ObservedAt.Format(domain.TimestampLayout),
		audit.FormatValue(rec.OldValue),
		audit.FormatValue(rec.NewValue),
		rec.Actor.Name,
		rec.Actor.Email,
		rec.ChangedAt.Format("2006-01-02 15:04:05"),
	)

	return c.SendAlert(ctx, subject, message)
}

// SendAlert publishes a message to the topic
func (c *SNSClient) SendAlert(ctx context.Context, subject, message string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	result, err := c.svc.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	log.Debug().Str("message_id", aws.ToString(result.MessageId)).Msg("sns notification sent")
	return nil
}

// internal/common/aws/sns.go

// Package aws wraps the AWS clients the service publishes through.
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"agrimarket-ai/internal/common/logger"
)

// SNSClient publishes alert notifications to an SNS topic.
type SNSClient struct {
	client   *sns.Client
	topicARN string
	logger   logger.Logger
}

// NewSNSClient builds an SNS client for the given region and topic.
func NewSNSClient(ctx context.Context, region, topicARN string, log logger.Logger) (*SNSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SNSClient{
		client:   sns.NewFromConfig(cfg),
		topicARN: topicARN,
		logger:   log.With(map[string]interface{}{"component": "sns"}),
	}, nil
}

// PublishJSON marshals payload and publishes it with the given subject.
func (c *SNSClient) PublishJSON(ctx context.Context, subject string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal alert payload: %w", err)
	}

	_, err = c.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(c.topicARN),
		Subject:  awssdk.String(subject),
		Message:  awssdk.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}

	c.logger.Debug("alert published", map[string]interface{}{"subject": subject})
	return nil
}

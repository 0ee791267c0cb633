package gateway

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/storagegateway"
)

// AWSConfig selects the account and region for the real client.
type AWSConfig struct {
	Region   string
	Profile  string // optional named profile; default credential chain otherwise
	Endpoint string // optional custom endpoint (for LocalStack and tests)
}

// NewAWSClient builds a real Storage Gateway client from the default
// credential chain, optionally pinned to a named profile.
func NewAWSClient(ctx context.Context, cfg AWSConfig) (*storagegateway.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := storagegateway.NewFromConfig(awsCfg, func(o *storagegateway.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return client, nil
}

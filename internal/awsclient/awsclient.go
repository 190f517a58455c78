// Package awsclient resolves the shared AWS configuration used by the S3 and
// Athena clients.
package awsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"athena-demo/internal/config"
)

// Load resolves an aws.Config. Region and static credentials from cfg take
// precedence over the default chain (env, shared config, IMDS).
func Load(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.HasStaticCredentials() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(*cfg.KeyID, *cfg.Secret, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if awsCfg.Region == "" {
		return aws.Config{}, fmt.Errorf("no AWS region configured: set REGION or AWS_REGION")
	}
	return awsCfg, nil
}

// EndpointURL normalizes a custom S3 endpoint. Bare host names get https://.
func EndpointURL(endpoint string) string {
	if endpoint == "" {
		return ""
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return strings.TrimSuffix(endpoint, "/")
	}
	return fmt.Sprintf("https://%s", strings.TrimSuffix(endpoint, "/"))
}

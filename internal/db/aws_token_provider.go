package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// rdsTokenLifetime is how long an RDS IAM token stays valid after signing.
const rdsTokenLifetime = 15 * time.Minute

// AWSIAMTokenProvider signs RDS IAM auth tokens with the default AWS
// credential chain.
type AWSIAMTokenProvider struct {
	endpoint string // host:port
	region   string
	username string
}

// NewAWSIAMTokenProvider creates a token provider for AWS RDS IAM authentication.
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	switch {
	case endpoint == "":
		return nil, fmt.Errorf("AWS IAM auth requires endpoint (host:port): %w", pgcsv.ErrInvalidConfig)
	case region == "":
		return nil, fmt.Errorf("AWS IAM auth requires region (use --aws-region or $AWS_REGION): %w", pgcsv.ErrInvalidConfig)
	case username == "":
		return nil, fmt.Errorf("AWS IAM auth requires database username (-U): %w", pgcsv.ErrInvalidConfig)
	}

	return &AWSIAMTokenProvider{
		endpoint: endpoint,
		region:   region,
		username: username,
	}, nil
}

func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	signedAt := time.Now()
	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}
	return token, signedAt.Add(rdsTokenLifetime), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWS IAM (endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}

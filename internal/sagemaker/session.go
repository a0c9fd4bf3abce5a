// Package sagemaker wraps the SageMaker, S3, IAM and STS clients a test run
// needs to deploy and invoke the container under test.
package sagemaker

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"

	"github.com/aws/aws-sagemaker-tester/internal/awssdk"
)

// Session bundles the region-scoped AWS clients used by test bodies. It is
// constructed once per suite run and shared read-only.
type Session struct {
	Region string

	SageMaker *sagemaker.Client
	Runtime   *sagemakerruntime.Client
	S3        *s3.Client
	IAM       *iam.Client
	STS       *sts.Client

	lg *zap.Logger

	accountID string
}

// New creates a Session for the given region.
func New(ctx context.Context, lg *zap.Logger, region string) (*Session, error) {
	cfg, err := awssdk.NewConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &Session{
		Region:    region,
		SageMaker: sagemaker.NewFromConfig(cfg),
		Runtime:   sagemakerruntime.NewFromConfig(cfg),
		S3:        s3.NewFromConfig(cfg),
		IAM:       iam.NewFromConfig(cfg),
		STS:       sts.NewFromConfig(cfg),
		lg:        lg,
	}, nil
}

// AccountID resolves and caches the caller's AWS account ID.
func (s *Session) AccountID(ctx context.Context) (string, error) {
	if s.accountID != "" {
		return s.accountID, nil
	}
	id, err := callerAccount(ctx, s.STS)
	if err != nil {
		return "", err
	}
	s.accountID = id
	return id, nil
}

// Hosting returns endpoint deploy/invoke helpers backed by this session.
func (s *Session) Hosting() *HostingService {
	return &HostingService{lg: s.lg, sm: s.SageMaker, rt: s.Runtime}
}

type callerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

func callerAccount(ctx context.Context, svc callerIdentityAPI) (string, error) {
	out, err := svc.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	if out.Account == nil || *out.Account == "" {
		return "", fmt.Errorf("caller identity has no account ID")
	}
	return *out.Account, nil
}

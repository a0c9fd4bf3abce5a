package sagemaker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

type getRoleAPI interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
}

// ResolveExecutionRole expands a role name into the role ARN SageMaker
// assumes to run the container. Full ARNs pass through untouched.
func (s *Session) ResolveExecutionRole(ctx context.Context, role string) (string, error) {
	return resolveExecutionRole(ctx, s.lg, s.IAM, s.STS, role)
}

func resolveExecutionRole(ctx context.Context, lg *zap.Logger, iamSvc getRoleAPI, stsSvc callerIdentityAPI, role string) (string, error) {
	if strings.HasPrefix(role, "arn:") {
		return role, nil
	}
	out, err := iamSvc.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(role)})
	if err == nil {
		if out.Role == nil || out.Role.Arn == nil {
			return "", fmt.Errorf("iam:GetRole returned no ARN for %q", role)
		}
		return *out.Role.Arn, nil
	}

	var notFound *iamtypes.NoSuchEntityException
	if errors.As(err, &notFound) {
		return "", fmt.Errorf("execution role %q does not exist: %w", role, err)
	}

	// callers without iam:GetRole still need a usable ARN
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDenied" {
		account, accErr := callerAccount(ctx, stsSvc)
		if accErr != nil {
			return "", accErr
		}
		arn := fmt.Sprintf("arn:aws:iam::%s:role/%s", account, role)
		lg.Warn("not permitted to read role, constructing ARN from caller account",
			zap.String("role", role),
			zap.String("arn", arn),
		)
		return arn, nil
	}
	return "", fmt.Errorf("failed to resolve execution role %q: %w", role, err)
}

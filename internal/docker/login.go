package docker

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
)

// authTokenAPI is the subset of the ECR client used for registry login.
type authTokenAPI interface {
	GetAuthorizationToken(ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error)
}

// RegistryCredentials resolves docker login credentials for the account's ECR
// registry from an authorization token.
func RegistryCredentials(ctx context.Context, svc authTokenAPI) (username, password, registry string, err error) {
	out, err := svc.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return "", "", "", fmt.Errorf("failed to get ECR authorization token: %w", err)
	}
	if len(out.AuthorizationData) == 0 {
		return "", "", "", fmt.Errorf("ECR returned no authorization data")
	}
	data := out.AuthorizationData[0]

	decoded, err := base64.StdEncoding.DecodeString(aws.ToString(data.AuthorizationToken))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to decode ECR authorization token: %w", err)
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", "", "", fmt.Errorf("malformed ECR authorization token")
	}

	registry = strings.TrimPrefix(aws.ToString(data.ProxyEndpoint), "https://")
	return parts[0], parts[1], registry, nil
}

// Package awssdk creates shared AWS SDK configurations.
package awssdk

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"k8s.io/klog/v2"
)

// NewConfig returns an AWS SDK config for the given region
func NewConfig(ctx context.Context, region string) (aws.Config, error) {
	c, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to create AWS SDK config: %v", err)
	}
	return c, nil
}

// MustNewConfig is NewConfig, fatal on error. Used by test mains where
// a missing AWS config means the suite cannot run at all.
func MustNewConfig(ctx context.Context, region string) aws.Config {
	c, err := NewConfig(ctx, region)
	if err != nil {
		klog.Fatalf("failed to create AWS SDK config: %v", err)
	}
	return c
}

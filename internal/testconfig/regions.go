package testconfig

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// These regions have some p2 and p3 instances, but not enough for automated testing
var noP2Regions = []string{
	"ca-central-1", "eu-central-1", "eu-west-2", "us-west-1", "eu-west-3",
	"eu-north-1", "sa-east-1", "ap-east-1", "me-south-1",
}
var noP3Regions = []string{
	"ap-southeast-1", "ap-southeast-2", "ap-south-1", "ca-central-1",
	"eu-central-1", "eu-west-2", "us-west-1", "eu-west-3", "eu-north-1",
	"sa-east-1", "ap-east-1", "me-south-1",
}

// SkipReason reports why a test must be skipped in the given region for the
// given SageMaker instance type, or "" if it can run. It never fails a test.
func SkipReason(region, instanceType string) string {
	noP2 := slices.Contains(noP2Regions, region) && strings.HasPrefix(instanceType, "ml.p2")
	noP3 := slices.Contains(noP3Regions, region) && strings.HasPrefix(instanceType, "ml.p3")
	if noP2 || noP3 {
		return fmt.Sprintf("skipping GPU test in region %s to avoid insufficient capacity", region)
	}
	return ""
}

// RestrictedRegions returns the static capacity-restriction tables, keyed by
// GPU instance family.
func RestrictedRegions() map[string][]string {
	return map[string][]string{
		"p2": slices.Clone(noP2Regions),
		"p3": slices.Clone(noP3Regions),
	}
}

// instanceTypeOfferingsAPI is the subset of the EC2 client used for the
// live capacity cross-check.
type instanceTypeOfferingsAPI interface {
	DescribeInstanceTypeOfferings(ctx context.Context, params *ec2.DescribeInstanceTypeOfferingsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypeOfferingsOutput, error)
}

// HasInstanceTypeOffering reports whether the client's region offers the
// given EC2 instance type. Diagnostic only: the skip rule always uses the
// static tables above, which also encode capacity that exists but is too
// scarce for automated testing.
func HasInstanceTypeOffering(ctx context.Context, client instanceTypeOfferingsAPI, instanceType string) (bool, error) {
	out, err := client.DescribeInstanceTypeOfferings(ctx, &ec2.DescribeInstanceTypeOfferingsInput{
		LocationType: ec2types.LocationTypeRegion,
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("instance-type"),
				Values: []string{instanceType},
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to describe instance type offerings: %w", err)
	}
	return len(out.InstanceTypeOfferings) > 0, nil
}

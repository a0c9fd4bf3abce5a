// Package checkregions implements "aws-sagemaker-tester check-regions"
// commands.
package checkregions

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aws/aws-sagemaker-tester/internal/awssdk"
	"github.com/aws/aws-sagemaker-tester/internal/testconfig"
	"github.com/aws/aws-sagemaker-tester/pkg/logutil"
)

var logLevel string

// The smallest instance type of each restricted GPU family. Offerings are
// uniform within a family for the regions we care about.
var probeInstanceTypes = map[string]string{
	"p2": "p2.xlarge",
	"p3": "p3.2xlarge",
}

// NewCommand implements "aws-sagemaker-tester check-regions" command. It
// cross-checks the static capacity-restriction tables against live EC2
// instance type offerings. Diagnostic only: the tables also encode capacity
// that exists but is too scarce for automated testing, so a region offering
// the type may still legitimately be listed.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-regions",
		Short: "Cross-check GPU region restriction tables against EC2 offerings",

		RunE: checkFunc,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logutil.DefaultLogLevel, "Log level (debug, info, warn, error, dpanic, panic, fatal)")
	return cmd
}

func checkFunc(cmd *cobra.Command, args []string) error {
	lg, err := logutil.New(logLevel, []string{"stderr"})
	if err != nil {
		return err
	}
	defer lg.Sync()

	ctx := context.Background()
	for family, regions := range testconfig.RestrictedRegions() {
		instanceType := probeInstanceTypes[family]
		sort.Strings(regions)
		for _, region := range regions {
			cfg, err := awssdk.NewConfig(ctx, region)
			if err != nil {
				return err
			}
			offered, err := testconfig.HasInstanceTypeOffering(ctx, ec2.NewFromConfig(cfg), instanceType)
			if err != nil {
				lg.Warn("failed to check offerings",
					zap.String("region", region),
					zap.String("instance-type", instanceType),
					zap.Error(err),
				)
				continue
			}
			lg.Info("restricted region checked",
				zap.String("family", family),
				zap.String("region", region),
				zap.String("instance-type", instanceType),
				zap.Bool("offered", offered),
			)
			if !offered {
				fmt.Printf("%s: %s has no %s offering at all\n", family, region, instanceType)
			}
		}
	}
	return nil
}

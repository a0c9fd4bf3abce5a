// Package build implements "aws-sagemaker-tester build" commands.
package build

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/spf13/cobra"
	"github.com/urfave/sflags/gen/gpflag"
	"go.uber.org/zap"

	"github.com/aws/aws-sagemaker-tester/internal/awssdk"
	"github.com/aws/aws-sagemaker-tester/internal/docker"
	"github.com/aws/aws-sagemaker-tester/internal/testconfig"
	"github.com/aws/aws-sagemaker-tester/pkg/fileutil"
	"github.com/aws/aws-sagemaker-tester/pkg/logutil"
)

var (
	logLevel string
	dir      string
	opts     = testconfig.NewDefaultOptions()
)

// NewCommand implements "aws-sagemaker-tester build" command. It builds the
// image for every scenario of the option set, and pushes when --push-image is
// given, exactly as the test suite would before running.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build (and optionally push) the container images under test",

		RunE: buildFunc,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logutil.DefaultLogLevel, "Log level (debug, info, warn, error, dpanic, panic, fatal)")
	cmd.PersistentFlags().StringVar(&dir, "dir", ".", "Docker build context directory")
	if err := gpflag.ParseTo(opts, cmd.PersistentFlags()); err != nil {
		panic(err)
	}
	return cmd
}

func buildFunc(cmd *cobra.Command, args []string) error {
	lg, err := logutil.New(logLevel, []string{"stderr"})
	if err != nil {
		return err
	}
	defer lg.Sync()

	if err := opts.Verify(); err != nil {
		return err
	}
	dockerfile := opts.Dockerfile
	if !filepath.IsAbs(dockerfile) {
		dockerfile = filepath.Join(dir, dockerfile)
	}
	if !fileutil.Exist(dockerfile) {
		return fmt.Errorf("dockerfile %q not found", dockerfile)
	}

	ctx := context.Background()
	var ecrClient *ecr.Client
	if opts.PushImage {
		cfg, err := awssdk.NewConfig(ctx, opts.Region)
		if err != nil {
			return err
		}
		ecrClient = ecr.NewFromConfig(cfg)
	}

	for _, rc := range opts.RunConfigs() {
		lg.Info("resolved run config",
			zap.String("scenario", rc.Scenario.Name()),
			zap.String("image-uri", rc.ImageURI),
			zap.String("instance-type", rc.InstanceType),
		)
		uri, err := docker.BuildImage(ctx, lg, docker.BuildInput{
			FrameworkVersion: rc.FrameworkVersion,
			Dockerfile:       rc.Dockerfile,
			ImageURI:         rc.ImageURI,
			Region:           rc.Region,
			Dir:              dir,
			ExtraArgs:        opts.BuildArgs,
		})
		if err != nil {
			return err
		}
		if !opts.PushImage {
			continue
		}
		if err := docker.PushImage(ctx, lg, ecrClient, uri); err != nil {
			return err
		}
		img, err := docker.Check(ctx, lg, ecrClient, opts.AWSID, opts.DockerBaseName, rc.Tag)
		if err != nil {
			return err
		}
		fmt.Printf("pushed %s\n", img)
	}
	return nil
}

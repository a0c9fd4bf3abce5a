// aws-sagemaker-tester prepares container images for the SageMaker MXNet
// integration test suite.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aws/aws-sagemaker-tester/cmd/aws-sagemaker-tester/build"
	checkregions "github.com/aws/aws-sagemaker-tester/cmd/aws-sagemaker-tester/check-regions"
	"github.com/aws/aws-sagemaker-tester/cmd/aws-sagemaker-tester/version"
)

var rootCmd = &cobra.Command{
	Use:        "aws-sagemaker-tester",
	Short:      "SageMaker container test utilities",
	SuggestFor: []string{"sagemaker-tester", "sagemakertester"},
}

func init() {
	cobra.EnablePrefixMatching = true
}

func init() {
	rootCmd.AddCommand(
		build.NewCommand(),
		checkregions.NewCommand(),
		version.NewCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aws-sagemaker-tester failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

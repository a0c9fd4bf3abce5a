// Package version implements "aws-sagemaker-tester version" commands.
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aws/aws-sagemaker-tester/version"
)

// NewCommand implements "aws-sagemaker-tester version" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",

		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}

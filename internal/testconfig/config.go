// Package testconfig resolves the test suite's command-line options into
// per-scenario run configurations shared by every test in a run.
package testconfig

import (
	"flag"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/urfave/sflags/gen/gpflag"
)

// DefaultFrameworkVersion is the MXNet version tested when --framework-version
// is not given.
const DefaultFrameworkVersion = "1.6.0"

// Options holds the raw command-line options for a suite run. The set is
// parsed once at startup and never mutated afterwards; derived values live in
// RunConfig.
type Options struct {
	BuildImage       bool   `flag:"build-image" desc:"Build the container image before any test runs"`
	PushImage        bool   `flag:"push-image" desc:"Push the container image to ECR before any test runs"`
	DockerfileType   string `flag:"dockerfile-type" desc:"Dockerfile flavor to build. One of: ['dlc.cpu', 'dlc.gpu', 'mxnet.cpu', 'dlc.eia']"`
	Dockerfile       string `flag:"dockerfile" desc:"Path to the Dockerfile. Defaults to Dockerfile.<dockerfile-type>"`
	DockerBaseName   string `flag:"docker-base-name" desc:"Repository name of the image under test"`
	Region           string `flag:"region" desc:"AWS region to run against"`
	FrameworkVersion string `flag:"framework-version" desc:"MXNet version of the image under test"`
	PyVersion        string `flag:"py-version" desc:"Python version(s) to test. One of: ['2', '3', '2,3']"`
	Processor        string `flag:"processor" desc:"Processor type(s) to test. One of: ['gpu', 'cpu', 'cpu,gpu']"`
	AWSID            string `flag:"aws-id" desc:"AWS account ID that owns the ECR registry"`
	InstanceType     string `flag:"instance-type" desc:"SageMaker instance type. Defaults by processor when empty"`
	AcceleratorType  string `flag:"accelerator-type" desc:"Elastic Inference accelerator type"`
	Tag              string `flag:"tag" desc:"Image tag. Defaults to <framework-version>-<processor>-<py-version>"`
	BuildArgs        string `flag:"build-args" desc:"Extra arguments passed verbatim to docker build"`
	EmitMetrics      bool   `flag:"emit-metrics" desc:"Record and emit test metrics to CloudWatch"`
}

// NewDefaultOptions returns an Options with every default filled in.
func NewDefaultOptions() *Options {
	return &Options{
		DockerfileType:   "mxnet.cpu",
		DockerBaseName:   "sagemaker-mxnet-inference",
		Region:           "us-west-2",
		FrameworkVersion: DefaultFrameworkVersion,
		PyVersion:        "3",
		Processor:        "cpu",
	}
}

var (
	dockerfileTypes = []string{"dlc.cpu", "dlc.gpu", "mxnet.cpu", "dlc.eia"}
	pyVersions      = []string{"2", "3", "2,3"}
	processors      = []string{"gpu", "cpu", "cpu,gpu"}
)

// ParseFlags binds the options to a pflag set and mirrors every flag into the
// standard library's flag set, so they can be passed alongside "go test" flags.
func ParseFlags(opts *Options) (*pflag.FlagSet, error) {
	flags, err := gpflag.Parse(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	flags.VisitAll(func(pf *pflag.Flag) {
		flag.CommandLine.Var(pf.Value, pf.Name, pf.Usage)
	})
	return flags, nil
}

// Verify validates enum-constrained options and fills defaults that depend on
// other options. Any error here is a configuration error: the suite must not
// run at all.
func (o *Options) Verify() error {
	if !isOneOf(o.DockerfileType, dockerfileTypes) {
		return fmt.Errorf("--dockerfile-type must be one of the following values: %q", dockerfileTypes)
	}
	if !isOneOf(o.PyVersion, pyVersions) {
		return fmt.Errorf("--py-version must be one of the following values: %q", pyVersions)
	}
	if !isOneOf(o.Processor, processors) {
		return fmt.Errorf("--processor must be one of the following values: %q", processors)
	}
	if o.Dockerfile == "" {
		o.Dockerfile = "Dockerfile." + o.DockerfileType
	}
	if o.PushImage && o.AWSID == "" {
		return fmt.Errorf("--aws-id must be specified for --push-image")
	}
	return nil
}

func isOneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

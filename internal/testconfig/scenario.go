package testconfig

import (
	"fmt"
	"strings"
)

// Scenario is one (python version, processor) combination of a suite run.
// Comma-separated --py-version and --processor values fan out into the cross
// product of scenarios, each executed as an independent pass over the tests.
type Scenario struct {
	// PyVersion carries the "py" prefix used in image tags, e.g. "py3".
	PyVersion string
	Processor string
}

// Name identifies the scenario in subtest names and metric dimensions.
func (s Scenario) Name() string {
	return s.Processor + "-" + s.PyVersion
}

// Scenarios expands the parsed options into the explicit scenario list,
// generated once before test execution.
func (o *Options) Scenarios() []Scenario {
	var scenarios []Scenario
	for _, py := range strings.Split(o.PyVersion, ",") {
		for _, proc := range strings.Split(o.Processor, ",") {
			scenarios = append(scenarios, Scenario{
				PyVersion: "py" + py,
				Processor: proc,
			})
		}
	}
	return scenarios
}

// RunConfig holds every value derived from the options for one scenario.
// Derivation is pure and deterministic; a RunConfig is computed once per
// scenario and shared read-only by all tests in the run.
type RunConfig struct {
	Scenario Scenario

	Region           string
	FrameworkVersion string
	AcceleratorType  string

	Dockerfile        string
	Tag               string
	Registry          string
	ImageURI          string
	InstanceType      string
	LocalInstanceType string
}

// NewRunConfig derives the scenario's run configuration. Verify must have
// been called on the options first.
func NewRunConfig(o *Options, s Scenario) *RunConfig {
	rc := &RunConfig{
		Scenario:         s,
		Region:           o.Region,
		FrameworkVersion: o.FrameworkVersion,
		AcceleratorType:  o.AcceleratorType,
		Dockerfile:       o.Dockerfile,
	}

	rc.Tag = o.Tag
	if rc.Tag == "" {
		rc.Tag = fmt.Sprintf("%s-%s-%s", o.FrameworkVersion, s.Processor, s.PyVersion)
	}

	if o.AWSID != "" {
		rc.Registry = fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", o.AWSID, o.Region)
		rc.ImageURI = fmt.Sprintf("%s/%s:%s", rc.Registry, o.DockerBaseName, rc.Tag)
	} else {
		rc.ImageURI = fmt.Sprintf("%s:%s", o.DockerBaseName, rc.Tag)
	}

	rc.InstanceType = o.InstanceType
	if rc.InstanceType == "" {
		if s.Processor == "cpu" {
			rc.InstanceType = "ml.c4.xlarge"
		} else {
			rc.InstanceType = "ml.p2.xlarge"
		}
	}

	if s.Processor == "cpu" {
		rc.LocalInstanceType = "local"
	} else {
		rc.LocalInstanceType = "local_gpu"
	}

	return rc
}

// RunConfigs derives one RunConfig per expanded scenario.
func (o *Options) RunConfigs() []*RunConfig {
	var configs []*RunConfig
	for _, s := range o.Scenarios() {
		configs = append(configs, NewRunConfig(o, s))
	}
	return configs
}

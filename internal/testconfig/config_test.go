package testconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyDefaults(t *testing.T) {
	opts := NewDefaultOptions()
	require.NoError(t, opts.Verify())

	assert.Equal(t, "mxnet.cpu", opts.DockerfileType)
	assert.Equal(t, "Dockerfile.mxnet.cpu", opts.Dockerfile)
	assert.Equal(t, "sagemaker-mxnet-inference", opts.DockerBaseName)
	assert.Equal(t, "us-west-2", opts.Region)
	assert.Equal(t, DefaultFrameworkVersion, opts.FrameworkVersion)
	assert.Equal(t, "3", opts.PyVersion)
	assert.Equal(t, "cpu", opts.Processor)
}

func TestVerifyExplicitDockerfileKept(t *testing.T) {
	opts := NewDefaultOptions()
	opts.Dockerfile = "docker/1.6.0/Dockerfile.gpu"
	require.NoError(t, opts.Verify())
	assert.Equal(t, "docker/1.6.0/Dockerfile.gpu", opts.Dockerfile)
}

func TestVerifyRejectsInvalidEnums(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Options)
	}{
		{"dockerfile-type", func(o *Options) { o.DockerfileType = "pytorch.cpu" }},
		{"py-version", func(o *Options) { o.PyVersion = "4" }},
		{"py-version reversed list", func(o *Options) { o.PyVersion = "3,2" }},
		{"processor", func(o *Options) { o.Processor = "tpu" }},
		{"processor reversed list", func(o *Options) { o.Processor = "gpu,cpu" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opts := NewDefaultOptions()
			tc.mutate(opts)
			assert.Error(t, opts.Verify())
		})
	}
}

func TestVerifyPushRequiresAWSID(t *testing.T) {
	opts := NewDefaultOptions()
	opts.PushImage = true
	assert.Error(t, opts.Verify())

	opts.AWSID = "123456789012"
	assert.NoError(t, opts.Verify())
}

//go:build e2e

package serving

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws/aws-sagemaker-tester/internal/sagemaker"
	"github.com/aws/aws-sagemaker-tester/pkg/fileutil"
)

// TestHostedEndpoint deploys each scenario's pushed image as a SageMaker
// endpoint and round-trips an invocation.
func TestHostedEndpoint(t *testing.T) {
	if opts.AWSID == "" {
		t.Skip("hosted endpoint tests require --aws-id")
	}
	if !fileutil.Exist(*modelData) {
		t.Skipf("hosted endpoint tests require a model artifact at %s", *modelData)
	}

	ctx := context.Background()
	roleARN, err := session.ResolveExecutionRole(ctx, *roleName)
	require.NoError(t, err)

	bucket, err := session.DefaultBucket(ctx)
	require.NoError(t, err)

	artifact, err := os.Open(*modelData)
	require.NoError(t, err)
	modelDataURL, err := session.UploadData(ctx, bucket, fmt.Sprintf("mxnet-serving/%d/model.tar.gz", time.Now().Unix()), artifact)
	artifact.Close()
	require.NoError(t, err)

	for _, rc := range runConfigs {
		rc := rc
		t.Run(rc.Scenario.Name(), func(t *testing.T) {
			guard(t, rc)
			defer measure(t, rc)()

			hosting := session.Hosting()
			name := fmt.Sprintf("mxnet-serving-%s-%d", rc.Scenario.Name(), time.Now().UnixNano())
			defer func() {
				assert.NoError(t, hosting.Teardown(ctx, name))
			}()

			require.NoError(t, hosting.Deploy(ctx, sagemaker.DeployInput{
				Name:            name,
				ImageURI:        rc.ImageURI,
				ModelDataURL:    modelDataURL,
				RoleARN:         roleARN,
				InstanceType:    rc.InstanceType,
				AcceleratorType: rc.AcceleratorType,
			}))

			body, err := hosting.Invoke(ctx, name, "application/json", []byte(`[[2.0]]`))
			require.NoError(t, err)
			assert.NotEmpty(t, body)
		})
	}
}

//go:build e2e

package serving

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws/aws-sagemaker-tester/internal/docker"
	"github.com/aws/aws-sagemaker-tester/pkg/fileutil"
)

const serveReadyTimeout = 2 * time.Minute

// TestLocalServeAndInvoke serves each scenario's image on the local docker
// daemon and round-trips an invocation, the way a "local" or "local_gpu"
// instance type would.
func TestLocalServeAndInvoke(t *testing.T) {
	for _, rc := range runConfigs {
		rc := rc
		t.Run(rc.Scenario.Name(), func(t *testing.T) {
			guard(t, rc)
			defer measure(t, rc)()

			dir := ""
			if fileutil.Exist(*modelDir) {
				abs, err := filepath.Abs(*modelDir)
				require.NoError(t, err)
				dir = abs
			}

			ctx := context.Background()
			srv := docker.NewServer(lg, rc.ImageURI, dir, rc.LocalInstanceType == "local_gpu")
			require.NoError(t, srv.Start(ctx))
			defer func() {
				assert.NoError(t, srv.Stop(ctx))
			}()

			require.NoError(t, srv.WaitReady(ctx, serveReadyTimeout))

			body, err := srv.Invoke(ctx, "application/json", []byte(`[[2.0]]`))
			require.NoError(t, err)
			assert.NotEmpty(t, body)
		})
	}
}

package docker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func interceptExecOutput(t *testing.T, output string, fail error) *[]recordedCommand {
	t.Helper()
	var recorded []recordedCommand
	original := execCommandOutput
	execCommandOutput = func(ctx context.Context, name string, args ...string) (string, error) {
		recorded = append(recorded, recordedCommand{name: name, args: args})
		return output, fail
	}
	t.Cleanup(func() { execCommandOutput = original })
	return &recorded
}

func TestServerStartArguments(t *testing.T) {
	recorded := interceptExecOutput(t, "abc123", nil)

	srv := NewServer(zap.NewNop(), "sagemaker-mxnet-inference:1.6.0-gpu-py3", "/tmp/model", true)
	require.NoError(t, srv.Start(context.Background()))

	require.Len(t, *recorded, 1)
	args := (*recorded)[0].args
	assert.Equal(t, "run", args[0])
	assert.Contains(t, args, "-d")
	assert.Contains(t, args, "8080:8080")
	assert.Contains(t, args, "/tmp/model:/opt/ml/model")
	assert.Contains(t, args, "--gpus")
	assert.Equal(t, "serve", args[len(args)-1])
	assert.Equal(t, "sagemaker-mxnet-inference:1.6.0-gpu-py3", args[len(args)-2])
}

func TestServerStartCPUOmitsGPUs(t *testing.T) {
	recorded := interceptExecOutput(t, "abc123", nil)

	srv := NewServer(zap.NewNop(), "img:tag", "", false)
	require.NoError(t, srv.Start(context.Background()))

	args := (*recorded)[0].args
	assert.NotContains(t, args, "--gpus")
	assert.NotContains(t, args, "-v")
}

func TestServerStopUsesContainerID(t *testing.T) {
	interceptExecOutput(t, "abc123", nil)
	recorded := interceptExec(t, nil)

	srv := NewServer(zap.NewNop(), "img:tag", "", false)
	require.NoError(t, srv.Start(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))

	require.Len(t, *recorded, 1)
	assert.Equal(t, []string{"stop", "abc123"}, (*recorded)[0].args)

	// a second stop is a no-op
	require.NoError(t, srv.Stop(context.Background()))
	assert.Len(t, *recorded, 1)
}

// serverForBackend points a Server at a local httptest backend.
func serverForBackend(t *testing.T, backend *httptest.Server) *Server {
	t.Helper()
	u, err := url.Parse(backend.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	srv := NewServer(zap.NewNop(), "img:tag", "", false)
	srv.Port = port
	return srv
}

func TestServerWaitReadyAndInvoke(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ping":
			w.WriteHeader(http.StatusOK)
		case "/invocations":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.Write([]byte(`[4.0]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	srv := serverForBackend(t, backend)
	require.NoError(t, srv.WaitReady(context.Background(), 5*time.Second))

	body, err := srv.Invoke(context.Background(), "application/json", []byte(`[2.0]`))
	require.NoError(t, err)
	assert.Equal(t, []byte(`[4.0]`), body)
}

func TestServerInvokeErrorStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer backend.Close()

	srv := serverForBackend(t, backend)
	_, err := srv.Invoke(context.Background(), "application/json", []byte(`[2.0]`))
	assert.ErrorContains(t, err, "500")
}

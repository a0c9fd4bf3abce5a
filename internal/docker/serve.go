package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// execCommandOutput runs an external command and captures stdout.
// Swapped out in tests.
var execCommandOutput = func(ctx context.Context, name string, args ...string) (string, error) {
	command := exec.CommandContext(ctx, name, args...)
	command.Stderr = os.Stderr
	out, err := command.Output()
	return strings.TrimSpace(string(out)), err
}

const containerPort = 8080

// Server serves a model from the image under test on the local docker
// daemon. It stands in for a hosted endpoint when the resolved instance type
// is "local" or "local_gpu".
type Server struct {
	ImageURI string
	// ModelDir is mounted at /opt/ml/model when set.
	ModelDir string
	GPU      bool
	Port     int

	lg          *zap.Logger
	client      *http.Client
	containerID string
}

// NewServer returns a local server for the image, listening on the default
// serving port.
func NewServer(lg *zap.Logger, imageURI, modelDir string, gpu bool) *Server {
	return &Server{
		ImageURI: imageURI,
		ModelDir: modelDir,
		GPU:      gpu,
		Port:     containerPort,
		lg:       lg,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Start runs the container detached with the "serve" entrypoint argument.
func (s *Server) Start(ctx context.Context) error {
	args := []string{"run", "--rm", "-d", "-p", fmt.Sprintf("%d:%d", s.Port, containerPort)}
	if s.ModelDir != "" {
		args = append(args, "-v", s.ModelDir+":/opt/ml/model")
	}
	if s.GPU {
		args = append(args, "--gpus", "all")
	}
	args = append(args, s.ImageURI, "serve")

	s.lg.Info("starting local serving container",
		zap.String("image-uri", s.ImageURI),
		zap.Int("port", s.Port),
		zap.Bool("gpu", s.GPU),
	)
	id, err := execCommandOutput(ctx, "docker", args...)
	if err != nil {
		return fmt.Errorf("docker run of %q failed: %w", s.ImageURI, err)
	}
	s.containerID = id
	return nil
}

// WaitReady polls the container's ping endpoint until it answers or the
// timeout elapses.
func (s *Server) WaitReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := s.Endpoint() + "/ping"
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := s.client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("container %q not ready after %v", s.containerID, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// Invoke posts a payload to the container's invocations endpoint.
func (s *Server) Invoke(ctx context.Context, contentType string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint()+"/invocations", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke local endpoint: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invocation returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Endpoint returns the container's base URL on the host.
func (s *Server) Endpoint() string {
	return fmt.Sprintf("http://localhost:%d", s.Port)
}

// Stop stops the container. The --rm flag on run removes it.
func (s *Server) Stop(ctx context.Context) error {
	if s.containerID == "" {
		return nil
	}
	if err := execCommand(ctx, "", nil, "docker", "stop", s.containerID); err != nil {
		return fmt.Errorf("docker stop of %q failed: %w", s.containerID, err)
	}
	s.containerID = ""
	return nil
}

// Package docker builds and pushes the container image under test by
// driving the docker CLI.
package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"
)

// execCommand runs an external command streaming its output, like the CLI
// would. Swapped out in tests.
var execCommand = func(ctx context.Context, dir string, stdin io.Reader, name string, args ...string) error {
	command := exec.CommandContext(ctx, name, args...)
	command.Dir = dir
	command.Stdin = stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	return command.Run()
}

// BuildInput carries the resolved values for one docker build.
type BuildInput struct {
	FrameworkVersion string
	Dockerfile       string
	ImageURI         string
	Region           string
	// Dir is the build context directory.
	Dir string
	// ExtraArgs holds additional docker build arguments as a single
	// shell-quoted string.
	ExtraArgs string
}

// BuildImage builds the image and returns its URI.
func BuildImage(ctx context.Context, lg *zap.Logger, in BuildInput) (string, error) {
	args := []string{
		"build",
		"-t", in.ImageURI,
		"-f", in.Dockerfile,
		"--build-arg", "REGION=" + in.Region,
		"--build-arg", "FRAMEWORK_VERSION=" + in.FrameworkVersion,
	}
	extra, err := shellquote.Split(in.ExtraArgs)
	if err != nil {
		return "", fmt.Errorf("invalid extra build arguments %q: %w", in.ExtraArgs, err)
	}
	args = append(args, extra...)
	args = append(args, ".")

	lg.Info("building image",
		zap.String("image-uri", in.ImageURI),
		zap.String("dockerfile", in.Dockerfile),
		zap.String("dir", in.Dir),
	)
	if err := execCommand(ctx, in.Dir, nil, "docker", args...); err != nil {
		return "", fmt.Errorf("docker build of %q failed: %w", in.ImageURI, err)
	}
	return in.ImageURI, nil
}

// PushImage authenticates the docker daemon against the image's ECR registry
// and pushes the image.
func PushImage(ctx context.Context, lg *zap.Logger, svc authTokenAPI, imageURI string) error {
	username, password, registry, err := RegistryCredentials(ctx, svc)
	if err != nil {
		return err
	}
	lg.Info("logging in to registry", zap.String("registry", registry))
	err = execCommand(ctx, "", strings.NewReader(password),
		"docker", "login", "--username", username, "--password-stdin", registry)
	if err != nil {
		return fmt.Errorf("docker login to %q failed: %w", registry, err)
	}

	lg.Info("pushing image", zap.String("image-uri", imageURI))
	if err := execCommand(ctx, "", nil, "docker", "push", imageURI); err != nil {
		return fmt.Errorf("docker push of %q failed: %w", imageURI, err)
	}
	return nil
}

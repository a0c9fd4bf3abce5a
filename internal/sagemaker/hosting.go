package sagemaker

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"go.uber.org/zap"
)

const defaultDeployTimeout = 20 * time.Minute

// hostingAPI is the subset of the SageMaker client used to host a model.
// It also satisfies sagemaker.DescribeEndpointAPIClient for the waiter.
type hostingAPI interface {
	CreateModel(ctx context.Context, params *sagemaker.CreateModelInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateModelOutput, error)
	CreateEndpointConfig(ctx context.Context, params *sagemaker.CreateEndpointConfigInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateEndpointConfigOutput, error)
	CreateEndpoint(ctx context.Context, params *sagemaker.CreateEndpointInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateEndpointOutput, error)
	DescribeEndpoint(ctx context.Context, params *sagemaker.DescribeEndpointInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeEndpointOutput, error)
	DeleteEndpoint(ctx context.Context, params *sagemaker.DeleteEndpointInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteEndpointOutput, error)
	DeleteEndpointConfig(ctx context.Context, params *sagemaker.DeleteEndpointConfigInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteEndpointConfigOutput, error)
	DeleteModel(ctx context.Context, params *sagemaker.DeleteModelInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteModelOutput, error)
}

type invokeAPI interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// HostingService deploys the container under test as a hosted endpoint and
// invokes it. Model, endpoint config and endpoint share one name so a run's
// resources can be torn down together.
type HostingService struct {
	lg *zap.Logger
	sm hostingAPI
	rt invokeAPI
}

// DeployInput describes one model deployment.
type DeployInput struct {
	Name            string
	ImageURI        string
	ModelDataURL    string
	RoleARN         string
	InstanceType    string
	AcceleratorType string
	// InitialInstanceCount defaults to 1.
	InitialInstanceCount int32
	Environment          map[string]string
	// Timeout bounds the wait for the endpoint to come in service.
	Timeout time.Duration
}

// Deploy creates the model, endpoint config and endpoint, then waits for the
// endpoint to come in service.
func (h *HostingService) Deploy(ctx context.Context, in DeployInput) error {
	if in.InitialInstanceCount == 0 {
		in.InitialInstanceCount = 1
	}
	if in.Timeout == 0 {
		in.Timeout = defaultDeployTimeout
	}

	h.lg.Info("creating model",
		zap.String("name", in.Name),
		zap.String("image-uri", in.ImageURI),
		zap.String("model-data-url", in.ModelDataURL),
	)
	_, err := h.sm.CreateModel(ctx, &sagemaker.CreateModelInput{
		ModelName:        aws.String(in.Name),
		ExecutionRoleArn: aws.String(in.RoleARN),
		PrimaryContainer: &smtypes.ContainerDefinition{
			Image:        aws.String(in.ImageURI),
			ModelDataUrl: aws.String(in.ModelDataURL),
			Environment:  in.Environment,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create model %q: %w", in.Name, err)
	}

	variant := smtypes.ProductionVariant{
		VariantName:          aws.String("AllTraffic"),
		ModelName:            aws.String(in.Name),
		InitialInstanceCount: aws.Int32(in.InitialInstanceCount),
		InstanceType:         smtypes.ProductionVariantInstanceType(in.InstanceType),
	}
	if in.AcceleratorType != "" {
		variant.AcceleratorType = smtypes.ProductionVariantAcceleratorType(in.AcceleratorType)
	}
	_, err = h.sm.CreateEndpointConfig(ctx, &sagemaker.CreateEndpointConfigInput{
		EndpointConfigName: aws.String(in.Name),
		ProductionVariants: []smtypes.ProductionVariant{variant},
	})
	if err != nil {
		return fmt.Errorf("failed to create endpoint config %q: %w", in.Name, err)
	}

	h.lg.Info("creating endpoint",
		zap.String("name", in.Name),
		zap.String("instance-type", in.InstanceType),
	)
	_, err = h.sm.CreateEndpoint(ctx, &sagemaker.CreateEndpointInput{
		EndpointName:       aws.String(in.Name),
		EndpointConfigName: aws.String(in.Name),
	})
	if err != nil {
		return fmt.Errorf("failed to create endpoint %q: %w", in.Name, err)
	}

	waiter := sagemaker.NewEndpointInServiceWaiter(h.sm)
	err = waiter.Wait(ctx, &sagemaker.DescribeEndpointInput{EndpointName: aws.String(in.Name)}, in.Timeout)
	if err != nil {
		return fmt.Errorf("endpoint %q did not come in service: %w", in.Name, err)
	}
	h.lg.Info("endpoint in service", zap.String("name", in.Name))
	return nil
}

// Invoke posts a payload to the endpoint and returns the response body.
func (h *HostingService) Invoke(ctx context.Context, name, contentType string, payload []byte) ([]byte, error) {
	out, err := h.rt.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(name),
		ContentType:  aws.String(contentType),
		Body:         payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke endpoint %q: %w", name, err)
	}
	return out.Body, nil
}

// Teardown deletes the endpoint, its config and the model. Deletion is
// best-effort: every delete is attempted and the first error is returned.
func (h *HostingService) Teardown(ctx context.Context, name string) error {
	var firstErr error
	if _, err := h.sm.DeleteEndpoint(ctx, &sagemaker.DeleteEndpointInput{EndpointName: aws.String(name)}); err != nil {
		h.lg.Warn("failed to delete endpoint", zap.String("name", name), zap.Error(err))
		firstErr = err
	}
	if _, err := h.sm.DeleteEndpointConfig(ctx, &sagemaker.DeleteEndpointConfigInput{EndpointConfigName: aws.String(name)}); err != nil {
		h.lg.Warn("failed to delete endpoint config", zap.String("name", name), zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	if _, err := h.sm.DeleteModel(ctx, &sagemaker.DeleteModelInput{ModelName: aws.String(name)}); err != nil {
		h.lg.Warn("failed to delete model", zap.String("name", name), zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
